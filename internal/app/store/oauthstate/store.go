// internal/app/store/oauthstate/store.go

// Package oauthstate persists the anti-forgery state tokens handed out at
// the start of an OAuth flow. Tokens are single use and expire on a TTL.
package oauthstate

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type record struct {
	Token     string    `bson:"token"`
	ReturnURL string    `bson:"return_url,omitempty"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

type Store struct {
	col *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{col: db.Collection("oauth_states")}
}

// EnsureIndexes creates the unique token index and the TTL index that lets
// Mongo expire stale tokens on its own.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_oauth_token"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_oauth_expiry"),
		},
	})
	return err
}

// Save records a freshly issued state token. returnURL, when non-empty, is
// the in-app path the user is sent back to once the flow completes.
func (s *Store) Save(ctx context.Context, token, returnURL string, expiresAt time.Time) error {
	_, err := s.col.InsertOne(ctx, record{
		Token:     token,
		ReturnURL: returnURL,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
	return err
}

// Validate consumes a state token. A token validates at most once: the
// lookup and delete are a single FindOneAndDelete, so a replayed callback
// with the same token fails. Returns the stored return URL when valid.
func (s *Store) Validate(ctx context.Context, token string) (string, bool, error) {
	var rec record
	err := s.col.FindOneAndDelete(ctx, bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.ReturnURL, true, nil
}

// CleanupExpired deletes tokens past their expiry. The TTL index does this
// too, but Mongo only sweeps TTL indexes periodically.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
