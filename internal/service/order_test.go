package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/errors"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/mailer"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/webhook"
)

const webhookSecret = "whsec_test"

type orderFixture struct {
	svc     *OrderService
	orders  *mockOrderRepo
	pending *mockPendingRepo
	lookups *mockLookupStore
	ledger  *mockLedger
	mail    *mockMailer
	events  *mockEvents
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:  new(mockOrderRepo),
		pending: new(mockPendingRepo),
		lookups: new(mockLookupStore),
		ledger:  new(mockLedger),
		mail:    new(mockMailer),
		events:  new(mockEvents),
	}
	f.svc = NewOrderService(
		webhook.NewVerifier(webhookSecret),
		f.orders,
		f.pending,
		f.lookups,
		f.ledger,
		f.mail,
		f.events,
		MailConfig{FromAddress: "pedidos@e-baby.es", SalesAddress: "ventas@e-baby.es"},
		newTestLogger(),
	)
	return f
}

func signedPayload(t *testing.T, payload []byte) string {
	t.Helper()
	return webhook.Sign(payload, webhookSecret, time.Now())
}

var completedEvent = []byte(`{
	"id": "evt_1",
	"type": "checkout.session.completed",
	"data": {
		"object": {
			"id": "cs_test_123",
			"customer_email": "ana@example.com",
			"amount_total": 12499,
			"currency": "eur",
			"payment_status": "paid",
			"metadata": {"pending_order_id": "po-1"}
		}
	}
}`)

func samplePending() *domain.PendingOrder {
	return &domain.PendingOrder{
		ID: "po-1",
		Customer: domain.Customer{
			Email:     "ana@example.com",
			FirstName: "Ana",
			LastName:  "García",
		},
		ShippingAddress: domain.ShippingAddress{
			Country: "ES", Postcode: "28001", Town: "Madrid", Address: "Calle Mayor 1",
		},
		ShippingService: domain.ShippingService{Name: "correos-48h", CostCents: 499},
		SubtotalCents:   12000,
		TotalCents:      12499,
		Status:          domain.PendingStatusPending,
	}
}

func TestHandleWebhook_CompletedSession(t *testing.T) {
	f := newOrderFixture(t)

	f.pending.On("GetByID", mock.Anything, "po-1").Return(samplePending(), nil)
	f.pending.On("MarkCompleted", mock.Anything, "po-1").Return(nil)
	f.orders.On("Upsert", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.CheckoutSessionID == "cs_test_123" &&
			o.TotalCents == 12499 &&
			o.Customer.FirstName == "Ana" &&
			o.PaymentMethod == "stripe"
	})).Return(true, nil)
	f.lookups.On("Put", mock.Anything, "cs_test_123", mock.Anything).Return(nil)
	f.ledger.On("Claim", mock.Anything, "cs_test_123").Return(true, nil)
	f.mail.On("Send", mock.Anything, mock.MatchedBy(func(m *mailer.Message) bool {
		return m.To == "ana@example.com"
	})).Return(nil).Once()
	f.mail.On("Send", mock.Anything, mock.MatchedBy(func(m *mailer.Message) bool {
		return m.To == "ventas@e-baby.es"
	})).Return(nil).Once()
	f.events.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	err := f.svc.HandleWebhook(context.Background(), completedEvent, signedPayload(t, completedEvent))
	require.NoError(t, err)

	f.orders.AssertExpectations(t)
	f.lookups.AssertExpectations(t)
	f.mail.AssertExpectations(t)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	f := newOrderFixture(t)

	err := f.svc.HandleWebhook(context.Background(), completedEvent, "t=1,v1=deadbeef")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSignature)

	f.orders.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	f.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandleWebhook_OtherEventTypesSkipped(t *testing.T) {
	f := newOrderFixture(t)

	expired := []byte(`{"id":"evt_2","type":"checkout.session.expired","data":{"object":{"id":"cs_x"}}}`)

	err := f.svc.HandleWebhook(context.Background(), expired, signedPayload(t, expired))
	require.NoError(t, err)

	f.orders.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	f.lookups.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	f.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandleWebhook_OrderUpsertFailureIsSwallowed(t *testing.T) {
	f := newOrderFixture(t)

	f.pending.On("GetByID", mock.Anything, "po-1").Return(samplePending(), nil)
	f.pending.On("MarkCompleted", mock.Anything, "po-1").Return(nil)
	f.orders.On("Upsert", mock.Anything, mock.Anything).Return(false, errors.New("db down"))
	f.lookups.On("Put", mock.Anything, "cs_test_123", mock.Anything).Return(nil)
	f.ledger.On("Claim", mock.Anything, "cs_test_123").Return(true, nil)
	f.mail.On("Send", mock.Anything, mock.Anything).Return(nil).Twice()

	err := f.svc.HandleWebhook(context.Background(), completedEvent, signedPayload(t, completedEvent))
	require.NoError(t, err)

	f.mail.AssertExpectations(t)
	f.events.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
}

func TestHandleWebhook_LookupWriteFailurePropagates(t *testing.T) {
	f := newOrderFixture(t)

	f.pending.On("GetByID", mock.Anything, "po-1").Return(samplePending(), nil)
	f.pending.On("MarkCompleted", mock.Anything, "po-1").Return(nil)
	f.orders.On("Upsert", mock.Anything, mock.Anything).Return(true, nil)
	f.lookups.On("Put", mock.Anything, "cs_test_123", mock.Anything).Return(errors.New("redis down"))

	err := f.svc.HandleWebhook(context.Background(), completedEvent, signedPayload(t, completedEvent))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")

	f.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandleWebhook_EmailFailureReleasesClaimAndPropagates(t *testing.T) {
	f := newOrderFixture(t)

	f.pending.On("GetByID", mock.Anything, "po-1").Return(samplePending(), nil)
	f.pending.On("MarkCompleted", mock.Anything, "po-1").Return(nil)
	f.orders.On("Upsert", mock.Anything, mock.Anything).Return(true, nil)
	f.lookups.On("Put", mock.Anything, "cs_test_123", mock.Anything).Return(nil)
	f.ledger.On("Claim", mock.Anything, "cs_test_123").Return(true, nil)
	f.mail.On("Send", mock.Anything, mock.Anything).Return(apperrors.Upstream("resend", "503"))
	f.ledger.On("Release", mock.Anything, "cs_test_123").Return(nil)

	err := f.svc.HandleWebhook(context.Background(), completedEvent, signedPayload(t, completedEvent))
	require.Error(t, err)

	f.ledger.AssertExpectations(t)
}

func TestHandleWebhook_RedeliveryDoesNotResendEmails(t *testing.T) {
	f := newOrderFixture(t)

	f.pending.On("GetByID", mock.Anything, "po-1").Return(samplePending(), nil)
	f.pending.On("MarkCompleted", mock.Anything, "po-1").Return(nil)
	f.orders.On("Upsert", mock.Anything, mock.Anything).Return(false, nil)
	f.lookups.On("Put", mock.Anything, "cs_test_123", mock.Anything).Return(nil)
	f.ledger.On("Claim", mock.Anything, "cs_test_123").Return(false, nil)

	err := f.svc.HandleWebhook(context.Background(), completedEvent, signedPayload(t, completedEvent))
	require.NoError(t, err)

	f.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
}

func TestHandleWebhook_MetadataFallback(t *testing.T) {
	f := newOrderFixture(t)

	legacy := []byte(`{
		"id": "evt_3",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_legacy",
				"customer_email": "luis@example.com",
				"amount_total": 5000,
				"metadata": {
					"customer_first_name": "Luis",
					"shipping_town": "Valencia"
				}
			}
		}
	}`)

	f.orders.On("Upsert", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Customer.FirstName == "Luis" &&
			o.ShippingAddress.Town == "Valencia" &&
			o.TotalCents == 5000
	})).Return(true, nil)
	f.lookups.On("Put", mock.Anything, "cs_legacy", mock.Anything).Return(nil)
	f.ledger.On("Claim", mock.Anything, "cs_legacy").Return(true, nil)
	f.mail.On("Send", mock.Anything, mock.Anything).Return(nil).Twice()
	f.events.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	err := f.svc.HandleWebhook(context.Background(), legacy, signedPayload(t, legacy))
	require.NoError(t, err)

	f.orders.AssertExpectations(t)
	f.pending.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestLookupOrder_FromStore(t *testing.T) {
	f := newOrderFixture(t)

	snapshot := &domain.OrderSnapshot{OrderID: "EB-2024-0001", TotalCents: 12499}
	f.lookups.On("Get", mock.Anything, "cs_test_123").Return(snapshot, nil)

	got, err := f.svc.LookupOrder(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)
}

func TestLookupOrder_FallsBackToRepository(t *testing.T) {
	f := newOrderFixture(t)

	f.lookups.On("Get", mock.Anything, "cs_test_123").
		Return(nil, apperrors.NotFound("order for session", "cs_test_123"))
	f.orders.On("GetBySessionID", mock.Anything, "cs_test_123").Return(&domain.Order{
		InternalReference: "EB-2024-0001",
		TotalCents:        12499,
	}, nil)

	got, err := f.svc.LookupOrder(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, "EB-2024-0001", got.OrderID)
}

func TestLookupOrder_NotFound(t *testing.T) {
	f := newOrderFixture(t)

	f.lookups.On("Get", mock.Anything, "cs_missing").
		Return(nil, apperrors.NotFound("order for session", "cs_missing"))
	f.orders.On("GetBySessionID", mock.Anything, "cs_missing").
		Return(nil, apperrors.NotFound("order for session", "cs_missing"))

	_, err := f.svc.LookupOrder(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
