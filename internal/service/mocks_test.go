package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/mailer"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/provider"
)

// --- Mock Provider ---

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, input *provider.SessionInput) (*provider.SessionHandle, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.SessionHandle), args.Error(1)
}

// --- Mock Repositories ---

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Upsert(ctx context.Context, order *domain.Order) (bool, error) {
	args := m.Called(ctx, order)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type mockPendingRepo struct {
	mock.Mock
}

func (m *mockPendingRepo) Create(ctx context.Context, po *domain.PendingOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *mockPendingRepo) GetByID(ctx context.Context, id string) (*domain.PendingOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PendingOrder), args.Error(1)
}

func (m *mockPendingRepo) AttachSession(ctx context.Context, id, sessionID string) error {
	args := m.Called(ctx, id, sessionID)
	return args.Error(0)
}

func (m *mockPendingRepo) MarkCompleted(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAbandonedRepo struct {
	mock.Mock
}

func (m *mockAbandonedRepo) Upsert(ctx context.Context, ac *domain.AbandonedCheckout) (string, bool, error) {
	args := m.Called(ctx, ac)
	return args.String(0), args.Bool(1), args.Error(2)
}

// --- Mock Lookup Store & Ledger ---

type mockLookupStore struct {
	mock.Mock
}

func (m *mockLookupStore) Put(ctx context.Context, sessionID string, snapshot *domain.OrderSnapshot) error {
	args := m.Called(ctx, sessionID, snapshot)
	return args.Error(0)
}

func (m *mockLookupStore) Get(ctx context.Context, sessionID string) (*domain.OrderSnapshot, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderSnapshot), args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Claim(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) Release(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Mock Mailer ---

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Name() string {
	return "mock"
}

func (m *mockMailer) Send(ctx context.Context, msg *mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockEvents) PublishSessionCreated(ctx context.Context, sessionID, pendingOrderID, customerEmail string, totalCents int64) error {
	args := m.Called(ctx, sessionID, pendingOrderID, customerEmail, totalCents)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}
