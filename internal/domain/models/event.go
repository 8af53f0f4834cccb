// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is one entry in the events directory.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"event_id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Author      string             `bson:"author" json:"author"`
	EventTime   time.Time          `bson:"event_time" json:"event_time"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// SameAs reports whether two events carry the same information.
// The database id is ignored.
func (e Event) SameAs(o Event) bool {
	return e.Name == o.Name &&
		e.Description == o.Description &&
		e.Author == o.Author &&
		e.EventTime.Equal(o.EventTime) &&
		e.CreatedAt.Equal(o.CreatedAt)
}
