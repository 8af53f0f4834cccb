// Package userstore is the authorization registry: it maps a provider subject
// id to the user's display name and organizer flag.
//
// The registry performs no authorization of its own. Callers decide who may
// invoke UpdateAuthorization.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/eventhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the mongo collection holding user records.
const CollectionName = "users"

var (
	// ErrNotFound is returned when an operation targets a user with no record.
	ErrNotFound = errors.New("user not found")
	// ErrEmptyUserID is returned when a user id is blank.
	ErrEmptyUserID = errors.New("user id is required")
)

type Store struct {
	c   Collection
	now func() time.Time
}

// New returns a registry backed by the users collection of db.
func New(db *mongo.Database) *Store {
	return NewWithCollection(NewMongoCollection(db.Collection(CollectionName)))
}

// NewWithCollection returns a registry backed by c.
func NewWithCollection(c Collection) *Store {
	return &Store{c: c, now: func() time.Time { return time.Now().UTC() }}
}

// Lookup reports whether userID is an organizer. A missing user or a record
// without the flag is not an error; both report false. The error is non-nil
// only when the store could not be read.
func (s *Store) Lookup(ctx context.Context, userID string) (bool, error) {
	u, err := s.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmptyUserID) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsOrganizer, nil
}

// Get loads the user record for userID. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, userID string) (models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return models.User{}, ErrEmptyUserID
	}
	var u models.User
	if err := s.c.FindOne(ctx, userID, &u); err != nil {
		if errors.Is(err, ErrNoDocument) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// UpsertIdentity records a successful authentication. The first call creates
// the user with is_organizer=false; later calls refresh the name only.
// Repeated calls with the same input leave exactly one record.
func (s *Store) UpsertIdentity(ctx context.Context, userID, name string) (models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return models.User{}, ErrEmptyUserID
	}
	now := s.now()
	upd := Update{
		Set: bson.M{
			"name":       name,
			"updated_at": now,
		},
		SetOnInsert: bson.M{
			"user_id":      userID,
			"is_organizer": false,
			"created_at":   now,
		},
	}

	_, err := s.c.UpdateOne(ctx, userID, upd, true)
	if err != nil && wafflemongo.IsDup(err) {
		// Two first-sight upserts raced on the unique user_id index and this
		// one lost; the record exists now, so a plain update finishes the job.
		_, err = s.c.UpdateOne(ctx, userID, Update{Set: upd.Set}, false)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return s.Get(ctx, userID)
}

// UpdateAuthorization sets the organizer flag of an existing user. It never
// creates a record; ErrNotFound is returned when userID has none.
func (s *Store) UpdateAuthorization(ctx context.Context, userID string, isOrganizer bool) error {
	if strings.TrimSpace(userID) == "" {
		return ErrNotFound
	}
	res, err := s.c.UpdateOne(ctx, userID, Update{Set: bson.M{
		"is_organizer": isOrganizer,
		"updated_at":   s.now(),
	}}, false)
	if err != nil {
		return fmt.Errorf("update authorization: %w", err)
	}
	if res.Matched == 0 {
		return ErrNotFound
	}
	return nil
}
