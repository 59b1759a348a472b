package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ourthirdplace/thirdplace/internal/app/system/identity"
	"github.com/ourthirdplace/thirdplace/internal/app/system/payments"
)

// FakeIdentityStore is an in-memory identity.Store for handler tests.
type FakeIdentityStore struct {
	mu        sync.Mutex
	users     map[string]string // email -> user id
	byID      map[string]string // user id -> email
	passwords map[string]string // email -> password
	Deleted   []string          // user ids passed to DeleteUser

	// CreateErr, when set, makes CreateUser fail with this error.
	CreateErr error
	// NextID, when set, is consumed as the id of the next created user.
	NextID string
}

func NewFakeIdentityStore() *FakeIdentityStore {
	return &FakeIdentityStore{
		users:     make(map[string]string),
		byID:      make(map[string]string),
		passwords: make(map[string]string),
	}
}

func (f *FakeIdentityStore) CreateUser(_ context.Context, email, password string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if _, ok := f.users[email]; ok {
		return nil, identity.ErrEmailTaken
	}
	id := f.NextID
	if id == "" {
		id = uuid.NewString()
	} else {
		f.NextID = ""
	}
	f.users[email] = id
	f.byID[id] = email
	f.passwords[email] = password
	return &identity.User{ID: id, Email: email}, nil
}

func (f *FakeIdentityStore) DeleteUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Deleted = append(f.Deleted, userID)
	if email, ok := f.byID[userID]; ok {
		delete(f.users, email)
		delete(f.passwords, email)
		delete(f.byID, userID)
	}
	return nil
}

func (f *FakeIdentityStore) VerifyPassword(_ context.Context, email, password string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.users[email]
	if !ok || f.passwords[email] != password {
		return nil, identity.ErrBadCredentials
	}
	return &identity.User{ID: id, Email: email}, nil
}

// Has reports whether an identity exists for the email.
func (f *FakeIdentityStore) Has(email string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[email]
	return ok
}

// FakePaymentGateway is an in-memory payments.Gateway for handler tests.
type FakePaymentGateway struct {
	mu       sync.Mutex
	sessions map[string]*payments.CheckoutSession

	// CreateErr, when set, makes CreateCheckoutSession fail with this error.
	CreateErr error
	// ParsedEvent, when set, is returned by ParseWebhook.
	ParsedEvent *payments.Event
	// ParseErr, when set, makes ParseWebhook fail with this error.
	ParseErr error
}

func NewFakePaymentGateway() *FakePaymentGateway {
	return &FakePaymentGateway{sessions: make(map[string]*payments.CheckoutSession)}
}

func (f *FakePaymentGateway) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	sess := &payments.CheckoutSession{
		ID:              "cs_test_" + uuid.NewString(),
		URL:             "https://checkout.test/session",
		PaymentStatus:   payments.StatusUnpaid,
		AmountTotal:     req.Amount,
		Currency:        req.Currency,
		ClientReference: req.ClientReference,
		Metadata:        req.Metadata,
	}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *FakePaymentGateway) GetCheckoutSession(_ context.Context, id string) (*payments.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sess, ok := f.sessions[id]; ok {
		return sess, nil
	}
	return nil, payments.ErrSessionNotFound
}

func (f *FakePaymentGateway) ParseWebhook(_ []byte, _ string) (*payments.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ParseErr != nil {
		return nil, f.ParseErr
	}
	if f.ParsedEvent != nil {
		return f.ParsedEvent, nil
	}
	return nil, payments.ErrSignature
}

// MarkPaid flips a stored session to paid with the given payment intent.
func (f *FakePaymentGateway) MarkPaid(id, paymentIntentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sess, ok := f.sessions[id]; ok {
		sess.PaymentStatus = payments.StatusPaid
		sess.PaymentIntentID = paymentIntentID
	}
}
