// internal/app/system/identity/identity.go

// Package identity talks to the system of record for authentication. Two
// providers exist: a hosted provider reached over its admin REST surface, and
// a local Mongo-backed provider for development and tests.
//
// The admin create/delete operations exist for the signup saga: a failed
// signup must be able to roll the identity back so no orphaned account is
// left behind.
package identity

import (
	"context"
	"errors"
)

// Sentinel errors shared by all providers.
var (
	ErrNotFound       = errors.New("identity: user not found")
	ErrEmailTaken     = errors.New("identity: email already registered")
	ErrBadCredentials = errors.New("identity: invalid email or password")
)

// User is the identity record held by the provider.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Store is the identity collaborator consumed by the signup and login flows.
type Store interface {
	// CreateUser registers a new identity and returns it.
	CreateUser(ctx context.Context, email, password string) (*User, error)
	// DeleteUser removes an identity. Used only by the signup saga's
	// compensating rollback.
	DeleteUser(ctx context.Context, id string) error
	// VerifyPassword checks credentials and returns the matching identity.
	VerifyPassword(ctx context.Context, email, password string) (*User, error)
}
