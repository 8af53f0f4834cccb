package userstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoDocument is returned by a Collection when no document has the user id.
var ErrNoDocument = errors.New("userstore: no document")

// Update is a single-document update. SetOnInsert applies only when the
// update inserts a new document.
type Update struct {
	Set         bson.M
	SetOnInsert bson.M
}

// UpdateResult reports what an UpdateOne touched.
type UpdateResult struct {
	Matched  int64
	Upserted bool
}

// Collection is the narrow slice of a document store the registry needs.
// Documents are addressed by user_id. UpdateOne must be atomic per document.
type Collection interface {
	FindOne(ctx context.Context, userID string, out any) error
	UpdateOne(ctx context.Context, userID string, u Update, upsert bool) (UpdateResult, error)
}

// MongoCollection adapts a mongo collection to Collection.
type MongoCollection struct {
	c *mongo.Collection
}

// NewMongoCollection wraps c.
func NewMongoCollection(c *mongo.Collection) *MongoCollection {
	return &MongoCollection{c: c}
}

func (m *MongoCollection) FindOne(ctx context.Context, userID string, out any) error {
	err := m.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocument
	}
	return err
}

func (m *MongoCollection) UpdateOne(ctx context.Context, userID string, u Update, upsert bool) (UpdateResult, error) {
	doc := bson.M{}
	if len(u.Set) > 0 {
		doc["$set"] = u.Set
	}
	if len(u.SetOnInsert) > 0 {
		doc["$setOnInsert"] = u.SetOnInsert
	}
	res, err := m.c.UpdateOne(ctx, bson.M{"user_id": userID}, doc, options.Update().SetUpsert(upsert))
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{Matched: res.MatchedCount, Upserted: res.UpsertedCount > 0}, nil
}
