// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership tiers.
const (
	TierMonthly = "monthly"
	TierAnnual  = "annual"
)

// Membership statuses.
const (
	MembershipPending   = "pending"
	MembershipActive    = "active"
	MembershipCancelled = "cancelled"
)

// Membership is the billing record for a member, 1:1 with Profile by user id.
// Created at signup as pending; activated exactly once by the payment
// workflow; cancelled on a subscription-cancellation notification.
type Membership struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"user_id" json:"user_id"`
	Tier            string             `bson:"tier" json:"tier"`
	Status          string             `bson:"status" json:"status"`
	PrimaryLocation string             `bson:"primary_location" json:"primary_location"`
	ExtraLocations  []string           `bson:"extra_locations,omitempty" json:"extra_locations,omitempty"`
	PeriodEnd       *time.Time         `bson:"period_end,omitempty" json:"period_end,omitempty"`

	// Payment-processor identifiers. session_id and amount_due are recorded
	// when checkout starts; the rest at activation.
	SessionID       string `bson:"session_id,omitempty" json:"session_id,omitempty"`
	PaymentIntentID string `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`
	AmountDue       int64  `bson:"amount_due,omitempty" json:"amount_due,omitempty"` // smallest currency unit
	AmountPaid      int64  `bson:"amount_paid,omitempty" json:"amount_paid,omitempty"`
	Currency        string `bson:"currency,omitempty" json:"currency,omitempty"`

	ActivatedAt *time.Time `bson:"activated_at,omitempty" json:"activated_at,omitempty"`
	CancelledAt *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
