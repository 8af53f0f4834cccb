// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the mongo collection holding posts.
const CollectionName = "posts"

var (
	ErrNotFound     = errors.New("post not found")
	ErrEmptyPost    = errors.New("post must contain text and/or media")
	ErrMissingOwner = errors.New("post requires event_id and author_id")
	ErrInvalidMedia = errors.New("media entries must be absolute http(s) URLs")
)

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName), now: time.Now}
}

// Create inserts p. The event and author are trusted to exist; the gateway
// checks them before forwarding.
func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	p.EventID = strings.TrimSpace(p.EventID)
	p.AuthorID = strings.TrimSpace(p.AuthorID)
	if p.EventID == "" || p.AuthorID == "" {
		return models.Post{}, ErrMissingOwner
	}

	p.Text = htmlsanitize.PlainText(p.Text)
	media := make([]string, 0, len(p.Media))
	for _, m := range p.Media {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if !urlutil.IsValidAbsHTTPURL(m) {
			return models.Post{}, ErrInvalidMedia
		}
		media = append(media, m)
	}
	p.Media = media
	if p.Text == "" && len(p.Media) == 0 {
		return models.Post{}, ErrEmptyPost
	}

	p.ID = primitive.NewObjectID()
	p.CreatedAt = s.now().UTC().Truncate(time.Second)

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// List returns every post, newest first.
func (s *Store) List(ctx context.Context) ([]models.Post, error) {
	return s.find(ctx, bson.M{})
}

// ByEvent returns the posts for eventID, newest first.
func (s *Store) ByEvent(ctx context.Context, eventID string) ([]models.Post, error) {
	return s.find(ctx, bson.M{"event_id": eventID})
}

// Get loads one post. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}
	return p, nil
}

// Delete removes the post only if authorID wrote it. A post by someone else
// is reported as ErrNotFound.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, authorID string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "author_id": authorID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
