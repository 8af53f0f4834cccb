// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a text and/or media entry in an event's feed.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"post_id"`
	EventID   string             `bson:"event_id" json:"event_id"`
	AuthorID  string             `bson:"author_id" json:"author_id"`
	Text      string             `bson:"text" json:"text"`
	Media     []string           `bson:"media,omitempty" json:"media,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
