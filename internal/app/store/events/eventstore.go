// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the mongo collection holding events.
const CollectionName = "events"

var (
	ErrNotFound = errors.New("event not found")
	ErrInvalid  = errors.New("event requires name, author and event time")
)

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName), now: time.Now}
}

// Create inserts e with a fresh id. created_at is stamped in UTC and floored
// to the millisecond, the precision mongo stores.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.Name = htmlsanitize.PlainText(e.Name)
	e.Description = htmlsanitize.Sanitize(e.Description)
	e.Author = strings.TrimSpace(e.Author)
	if e.Name == "" || e.Author == "" || e.EventTime.IsZero() {
		return models.Event{}, ErrInvalid
	}

	e.ID = primitive.NewObjectID()
	e.NameCI = text.Fold(e.Name)
	e.EventTime = e.EventTime.UTC().Truncate(time.Millisecond)
	e.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// List returns every event ordered by event time.
func (s *Store) List(ctx context.Context) ([]models.Event, error) {
	return s.find(ctx, bson.M{})
}

// Get loads one event. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return e, nil
}

// SearchByName returns events whose name contains name, ignoring case and
// diacritics.
func (s *Store) SearchByName(ctx context.Context, name string) ([]models.Event, error) {
	folded := text.Fold(strings.TrimSpace(name))
	if folded == "" {
		return []models.Event{}, nil
	}
	return s.find(ctx, bson.M{"name_ci": primitive.Regex{Pattern: regexp.QuoteMeta(folded)}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "event_time", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
