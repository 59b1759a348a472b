// internal/app/store/registrations/registrationstore.go
package registrationstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrAlreadyRegistered is returned when the user already holds a confirmed
// registration for the event.
var ErrAlreadyRegistered = errors.New("already registered for this event")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("event_registrations")}
}

// Register inserts a confirmed registration. The partial unique index on
// (event_id, user_id) for confirmed rows makes the duplicate check atomic:
// two concurrent attempts race, one wins, the other gets
// ErrAlreadyRegistered. A user who cancelled earlier gets a fresh row.
func (s *Store) Register(ctx context.Context, eventID primitive.ObjectID, userID string) error {
	now := time.Now().UTC()
	_, err := s.c.InsertOne(ctx, models.EventRegistration{
		EventID:   eventID,
		UserID:    userID,
		Status:    models.RegistrationConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// Deregister cancels the user's confirmed registration for the event. When
// there is nothing to cancel it is a no-op and reports false.
func (s *Store) Deregister(ctx context.Context, eventID primitive.ObjectID, userID string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"event_id": eventID,
			"user_id":  userID,
			"status":   models.RegistrationConfirmed,
		},
		bson.M{"$set": bson.M{
			"status":     models.RegistrationCancelled,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// GetConfirmed returns the user's confirmed registration for the event, or
// nil when there is none.
func (s *Store) GetConfirmed(ctx context.Context, eventID primitive.ObjectID, userID string) (*models.EventRegistration, error) {
	var reg models.EventRegistration
	err := s.c.FindOne(ctx, bson.M{
		"event_id": eventID,
		"user_id":  userID,
		"status":   models.RegistrationConfirmed,
	}).Decode(&reg)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// CountConfirmed returns the number of confirmed registrations for the event.
func (s *Store) CountConfirmed(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"event_id": eventID,
		"status":   models.RegistrationConfirmed,
	})
}

// CountConfirmedForEvents returns confirmed counts keyed by event id, for
// rendering a listing without one count query per event.
func (s *Store) CountConfirmedForEvents(ctx context.Context, eventIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"event_id": bson.M{"$in": eventIDs},
			"status":   models.RegistrationConfirmed,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$event_id",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		EventID primitive.ObjectID `bson:"_id"`
		Count   int64              `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.EventID] = row.Count
	}
	return counts, nil
}

// ListConfirmedByUser returns the user's confirmed registrations, newest
// first.
func (s *Store) ListConfirmedByUser(ctx context.Context, userID string) ([]models.EventRegistration, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"user_id": userID,
		"status":  models.RegistrationConfirmed,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var regs []models.EventRegistration
	if err := cur.All(ctx, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}
