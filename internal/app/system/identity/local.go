// internal/app/system/identity/local.go
package identity

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// LocalStore keeps identities in a Mongo collection with bcrypt password
// hashes. It serves development environments where the hosted provider is
// not reachable, and handler tests.
type LocalStore struct {
	c *mongo.Collection
}

// NewLocalStore builds a Mongo-backed identity provider.
func NewLocalStore(db *mongo.Database) *LocalStore {
	return &LocalStore{c: db.Collection("identities")}
}

type localIdentity struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash []byte    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

// CreateUser inserts a new identity keyed by a fresh UUID.
func (s *LocalStore) CreateUser(ctx context.Context, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	doc := localIdentity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &User{ID: doc.ID, Email: doc.Email}, nil
}

// DeleteUser removes the identity; deleting a missing identity is a no-op so
// the saga rollback stays idempotent.
func (s *LocalStore) DeleteUser(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// VerifyPassword checks credentials against the stored bcrypt hash.
func (s *LocalStore) VerifyPassword(ctx context.Context, email, password string) (*User, error) {
	var doc localIdentity
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(doc.PasswordHash, []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return &User{ID: doc.ID, Email: doc.Email}, nil
}
