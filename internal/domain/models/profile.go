// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Terminology: User Identifiers
//   - UserID / user_id: the identity-provider user id (string) that keys a
//     member across profiles, memberships, and registrations
//   - ID / _id: the MongoDB ObjectID of the individual document

// Profile statuses.
const (
	ProfilePending = "pending"
	ProfileActive  = "active"
)

// Roles. Hosts can create events; admins can do that plus everything else.
const (
	RoleMember = "member"
	RoleHost   = "host"
	RoleAdmin  = "admin"
)

// Profile is the member-owned record shown on the dashboard and directory.
// Created at signup with status pending; the activation workflow flips it to
// active. Never hard-deleted in the normal flow.
type Profile struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	FullName    string             `bson:"full_name" json:"full_name"`
	FullNameCI  string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Company     string             `bson:"company" json:"company"`
	NetworkURL  string             `bson:"network_url" json:"network_url"` // professional-network profile link
	Email       string             `bson:"email" json:"email"`
	Birthday    string             `bson:"birthday,omitempty" json:"birthday,omitempty"` // YYYY-MM-DD
	City        string             `bson:"city" json:"city"`
	Industries  []string           `bson:"industries,omitempty" json:"industries,omitempty"`
	Bio         string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Tier        string             `bson:"tier" json:"tier"` // mirrors Membership.Tier for display
	Status      string             `bson:"status" json:"status"`
	Role        string             `bson:"role" json:"role"` // member | host | admin

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
