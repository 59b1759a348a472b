// internal/app/system/payments/gateway.go

// Package payments wraps the payment collaborator. The application consumes
// three operations: create a hosted subscription checkout session, re-fetch a
// session by id, and verify-and-parse a webhook payload. Everything else
// (card handling, retries, subscription billing) stays on the processor's
// side of the trust boundary.
package payments

import (
	"context"
	"errors"
)

// ErrSignature is returned by ParseWebhook when the payload's cryptographic
// signature does not verify against the shared secret.
var ErrSignature = errors.New("payments: webhook signature verification failed")

// ErrSessionNotFound is returned when the processor knows no session with the
// given id.
var ErrSessionNotFound = errors.New("payments: checkout session not found")

// Payment status values surfaced on a checkout session.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// Webhook event types the application handles.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// CheckoutRequest describes the session to create.
type CheckoutRequest struct {
	PlanName        string // line-item label shown on the hosted page
	Amount          int64  // smallest currency unit
	Currency        string
	Interval        string // "month" or "year"
	SuccessURL      string
	CancelURL       string
	ClientReference string
	CustomerEmail   string
	// Metadata is attached to both the session and the subscription so the
	// activation and cancellation paths can recover context without a second
	// lookup.
	Metadata map[string]string
}

// CheckoutSession is the processor's view of a session.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string
	PaymentIntentID string
	AmountTotal     int64
	Currency        string
	ClientReference string
	Metadata        map[string]string
}

// Subscription carries the fields the cancellation path needs.
type Subscription struct {
	ID       string
	Metadata map[string]string
}

// Event is a verified webhook notification.
type Event struct {
	ID   string
	Type string
	// Session is populated for checkout.session.completed events.
	Session *CheckoutSession
	// Subscription is populated for customer.subscription.* events.
	Subscription *Subscription
}

// Gateway is the payment collaborator.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	// ParseWebhook verifies the signature header against the shared secret
	// and returns the typed event, or ErrSignature.
	ParseWebhook(payload []byte, sigHeader string) (*Event, error)
}
