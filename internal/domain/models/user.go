// internal/domain/models/user.go
package models

import "time"

// User is the identity and permission record kept by the users service.
//
// NOTE:
//   - UserID is the identity provider's subject id and never changes.
//   - IsOrganizer may be missing in stored documents; decoding leaves it false.
type User struct {
	UserID      string `bson:"user_id" json:"user_id"`
	Name        string `bson:"name" json:"name"`
	IsOrganizer bool   `bson:"is_organizer" json:"is_organizer"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
