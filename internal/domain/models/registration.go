// internal/domain/models/registration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration statuses.
const (
	RegistrationConfirmed = "confirmed"
	RegistrationCancelled = "cancelled"
)

// EventRegistration joins a member to an event. Invariant: at most one
// confirmed registration per (event, user) pair, backed by a unique partial
// index on the collection.
type EventRegistration struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID  string             `bson:"user_id" json:"user_id"`
	Status  string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
