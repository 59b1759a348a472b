// internal/app/store/profiles/profilestore.go
package profilestore

// Terminology: User Identifiers
//   - UserID / user_id: the identity-provider user id (string) shared across
//     profiles, memberships, and registrations
//   - ID / _id: the MongoDB ObjectID of the profile document

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no profile exists for the user.
	ErrNotFound = errors.New("profile not found")
	// ErrDuplicateProfile is returned when a profile already exists for the
	// user id.
	ErrDuplicateProfile = errors.New("profile already exists for this user")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// Insert creates a profile. The unique index on user_id rejects a second
// profile for the same identity.
func (s *Store) Insert(ctx context.Context, p models.Profile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.FullNameCI = text.Fold(p.FullName)

	_, err := s.c.InsertOne(ctx, p)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateProfile
		}
		return err
	}
	return nil
}

// GetByUserID returns the profile for the identity, or ErrNotFound.
func (s *Store) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail returns the profile with the given email, or ErrNotFound. The
// caller normalizes the email; lookup is exact.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetStatus flips the profile status flag. Setting the same status twice is
// harmless.
func (s *Store) SetStatus(ctx context.Context, userID, status string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateParams carries the member-editable profile fields.
type UpdateParams struct {
	FullName   string
	Company    string
	NetworkURL string
	City       string
	Industries []string
	Bio        string
}

// UpdateDetails applies a member's profile edit. Status, tier, and role are
// not member-writable and are never touched here.
func (s *Store) UpdateDetails(ctx context.Context, userID string, p UpdateParams) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"full_name":    p.FullName,
			"full_name_ci": text.Fold(p.FullName),
			"company":      p.Company,
			"network_url":  p.NetworkURL,
			"city":         p.City,
			"industries":   p.Industries,
			"bio":          p.Bio,
			"updated_at":   time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the profile document. Used only by the signup saga's
// compensating rollback; deleting a missing profile is a no-op.
func (s *Store) Delete(ctx context.Context, userID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}
