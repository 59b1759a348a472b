// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a scheduled gathering. Events are created by hosts and admins
// through the host interface and are read-only to members.
type Event struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title"`
	TitleCI  string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped
	StartsAt time.Time          `bson:"starts_at" json:"starts_at"`
	Location string             `bson:"location" json:"location"`
	Capacity int                `bson:"capacity" json:"capacity"`
	Industry string             `bson:"industry,omitempty" json:"industry,omitempty"`

	CreatedBy string    `bson:"created_by,omitempty" json:"created_by,omitempty"` // host user id
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
