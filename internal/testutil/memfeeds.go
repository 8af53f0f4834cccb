package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	poststore "github.com/dalemusser/eventhub/internal/app/store/posts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemEvents is an in-memory events store with the same sentinel errors as
// eventstore.Store.
type MemEvents struct {
	mu  sync.Mutex
	evs []models.Event

	// Err, when set, is returned by every operation to simulate an outage.
	Err error
}

func (m *MemEvents) Create(_ context.Context, e models.Event) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Event{}, m.Err
	}
	if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Author) == "" || e.EventTime.IsZero() {
		return models.Event{}, eventstore.ErrInvalid
	}
	e.ID = primitive.NewObjectID()
	e.EventTime = e.EventTime.UTC()
	e.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	m.evs = append(m.evs, e)
	return e, nil
}

func (m *MemEvents) List(context.Context) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Event{}, m.evs...), nil
}

func (m *MemEvents) Get(_ context.Context, id primitive.ObjectID) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Event{}, m.Err
	}
	for _, e := range m.evs {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Event{}, eventstore.ErrNotFound
}

func (m *MemEvents) SearchByName(_ context.Context, name string) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Event{}
	for _, e := range m.evs {
		if strings.Contains(strings.ToLower(e.Name), strings.ToLower(name)) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len returns the number of stored events.
func (m *MemEvents) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.evs)
}

// All returns a copy of the stored events in insertion order.
func (m *MemEvents) All() []models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Event{}, m.evs...)
}

// MemPosts is an in-memory posts store with the same validation, ownership
// and sentinel errors as poststore.Store.
type MemPosts struct {
	mu    sync.Mutex
	posts []models.Post

	// Err, when set, is returned by every operation to simulate an outage.
	Err error
}

func (m *MemPosts) Create(_ context.Context, p models.Post) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Post{}, m.Err
	}
	if strings.TrimSpace(p.EventID) == "" || strings.TrimSpace(p.AuthorID) == "" {
		return models.Post{}, poststore.ErrMissingOwner
	}
	media := []string{}
	for _, u := range p.Media {
		if u = strings.TrimSpace(u); u == "" {
			continue
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return models.Post{}, poststore.ErrInvalidMedia
		}
		media = append(media, u)
	}
	p.Media = media
	if strings.TrimSpace(p.Text) == "" && len(p.Media) == 0 {
		return models.Post{}, poststore.ErrEmptyPost
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	m.posts = append(m.posts, p)
	return p, nil
}

func (m *MemPosts) List(context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Post{}, m.posts...), nil
}

func (m *MemPosts) ByEvent(_ context.Context, eventID string) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Post{}
	for _, p := range m.posts {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemPosts) Get(_ context.Context, id primitive.ObjectID) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Post{}, m.Err
	}
	for _, p := range m.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Post{}, poststore.ErrNotFound
}

func (m *MemPosts) Delete(_ context.Context, id primitive.ObjectID, authorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, p := range m.posts {
		if p.ID == id && p.AuthorID == authorID {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return poststore.ErrNotFound
}

// Len returns the number of stored posts.
func (m *MemPosts) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

// All returns a copy of the stored posts in insertion order.
func (m *MemPosts) All() []models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Post{}, m.posts...)
}
