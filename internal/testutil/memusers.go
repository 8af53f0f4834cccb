package testutil

import (
	"context"
	"sync"

	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/bson"
)

// MemUsers is an in-memory userstore.Collection. Updates are atomic per call.
type MemUsers struct {
	mu   sync.Mutex
	docs map[string]bson.M

	// Err, when set, is returned by every operation to simulate an outage.
	Err error
}

// NewMemUsers returns an empty collection.
func NewMemUsers() *MemUsers {
	return &MemUsers{docs: map[string]bson.M{}}
}

// Put stores doc as-is under its user_id, replacing any existing document.
// Use it to seed records the registry itself would never write.
func (m *MemUsers) Put(doc bson.M) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := doc["user_id"].(string)
	cp := bson.M{}
	for k, v := range doc {
		cp[k] = v
	}
	m.docs[id] = cp
}

// Has reports whether a document exists for userID.
func (m *MemUsers) Has(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[userID]
	return ok
}

// Len returns the number of stored documents.
func (m *MemUsers) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *MemUsers) FindOne(ctx context.Context, userID string, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	doc, ok := m.docs[userID]
	if !ok {
		return userstore.ErrNoDocument
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func (m *MemUsers) UpdateOne(ctx context.Context, userID string, u userstore.Update, upsert bool) (userstore.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return userstore.UpdateResult{}, m.Err
	}
	if doc, ok := m.docs[userID]; ok {
		for k, v := range u.Set {
			doc[k] = v
		}
		return userstore.UpdateResult{Matched: 1}, nil
	}
	if !upsert {
		return userstore.UpdateResult{}, nil
	}
	doc := bson.M{"user_id": userID}
	for k, v := range u.SetOnInsert {
		doc[k] = v
	}
	for k, v := range u.Set {
		doc[k] = v
	}
	m.docs[userID] = doc
	return userstore.UpdateResult{Upserted: true}, nil
}
