package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile creates a test profile with the given name, email, and status.
// Returns the profile with its generated identity-provider user id.
func (f *Fixtures) CreateProfile(ctx context.Context, fullName, email, status string) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	profile := models.Profile{
		ID:         primitive.NewObjectID(),
		UserID:     uuid.NewString(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		City:       "Test City",
		Status:     status,
		Role:       "member",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("profiles").InsertOne(ctx, profile)
	if err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}

	return profile
}

// CreateActiveProfile creates a test profile with active status.
func (f *Fixtures) CreateActiveProfile(ctx context.Context, fullName, email string) models.Profile {
	f.t.Helper()
	return f.CreateProfile(ctx, fullName, email, models.ProfileActive)
}

// CreateMembership creates a membership record for the given user id.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, tier, status string) models.Membership {
	f.t.Helper()

	now := time.Now().UTC()
	membership := models.Membership{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		Tier:            tier,
		Status:          status,
		PrimaryLocation: "Columbia",
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := f.db.Collection("memberships").InsertOne(ctx, membership)
	if err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}

	return membership
}

// CreatePendingMembership creates a pending membership tied to a checkout
// session, as the signup flow leaves it before payment completes.
func (f *Fixtures) CreatePendingMembership(ctx context.Context, userID, tier, sessionID string) models.Membership {
	f.t.Helper()

	now := time.Now().UTC()
	membership := models.Membership{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		Tier:            tier,
		Status:          models.MembershipPending,
		PrimaryLocation: "Columbia",
		SessionID:       sessionID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := f.db.Collection("memberships").InsertOne(ctx, membership)
	if err != nil {
		f.t.Fatalf("failed to create pending test membership: %v", err)
	}

	return membership
}

// CreateEvent creates a test event starting at the given time.
func (f *Fixtures) CreateEvent(ctx context.Context, title string, startsAt time.Time, capacity int, createdBy string) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	event := models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		StartsAt:  startsAt,
		Location:  "Test Venue",
		Capacity:  capacity,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("events").InsertOne(ctx, event)
	if err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}

	return event
}

// CreateRegistration creates a confirmed registration linking a user to an event.
func (f *Fixtures) CreateRegistration(ctx context.Context, eventID primitive.ObjectID, userID string) models.EventRegistration {
	f.t.Helper()

	now := time.Now().UTC()
	reg := models.EventRegistration{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		Status:    models.RegistrationConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("event_registrations").InsertOne(ctx, reg)
	if err != nil {
		f.t.Fatalf("failed to create test registration: %v", err)
	}

	return reg
}
