// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no event exists with the given id.
var ErrNotFound = errors.New("event not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Insert creates an event and returns its id.
func (s *Store) Insert(ctx context.Context, e models.Event) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	e.TitleCI = text.Fold(e.Title)

	res, err := s.c.InsertOne(ctx, e)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// GetByID returns the event, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListUpcoming returns events starting at or after now, soonest first.
func (s *Store) ListUpcoming(ctx context.Context, now time.Time, limit int64) ([]models.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "starts_at", Value: 1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"starts_at": bson.M{"$gte": now}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListByCreator returns the events a host has created, soonest first.
func (s *Store) ListByCreator(ctx context.Context, userID string) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}})

	cur, err := s.c.Find(ctx, bson.M{"created_by": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
