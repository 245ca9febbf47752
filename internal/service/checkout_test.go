package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/errors"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/provider"
)

func newCheckoutService(t *testing.T) (*CheckoutService, *mockProvider, *mockPendingRepo, *mockAbandonedRepo, *mockEvents) {
	t.Helper()
	prov := new(mockProvider)
	pending := new(mockPendingRepo)
	abandoned := new(mockAbandonedRepo)
	events := new(mockEvents)
	svc := NewCheckoutService(prov, pending, abandoned, events, "eur", newTestLogger())
	return svc, prov, pending, abandoned, events
}

func validSessionInput() *CreateSessionInput {
	return &CreateSessionInput{
		Items: []ItemInput{
			{Name: "Cuna", Quantity: 1, Price: 120.00},
		},
		CustomerEmail: "a@b.com",
		SuccessURL:    "https://x/ok",
		CancelURL:     "https://x/cancel",
		Metadata:      map[string]string{},
		ShippingService: domain.ShippingService{
			Name: "correos-48h", CostCents: 499,
		},
	}
}

func TestCreateSession_Success(t *testing.T) {
	svc, prov, pending, _, events := newCheckoutService(t)

	pending.On("Create", mock.Anything, mock.MatchedBy(func(po *domain.PendingOrder) bool {
		return po.SubtotalCents == 12000 && po.TotalCents == 12499 &&
			po.Status == domain.PendingStatusPending
	})).Return(nil)

	prov.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(in *provider.SessionInput) bool {
		return len(in.Items) == 1 &&
			in.Items[0].UnitPriceCents == 12000 &&
			in.Metadata["pending_order_id"] != "" &&
			in.Currency == "eur"
	})).Return(&provider.SessionHandle{ID: "cs_test_1", URL: "https://pay/cs_test_1"}, nil)

	pending.On("AttachSession", mock.Anything, mock.Anything, "cs_test_1").Return(nil)
	events.On("PublishSessionCreated", mock.Anything, "cs_test_1", mock.Anything, "a@b.com", int64(12499)).Return(nil)

	out, err := svc.CreateSession(context.Background(), validSessionInput())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", out.SessionID)
	assert.Equal(t, "https://pay/cs_test_1", out.URL)

	prov.AssertExpectations(t)
	pending.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCreateSession_EmptyCart(t *testing.T) {
	svc, _, _, _, _ := newCheckoutService(t)

	input := validSessionInput()
	input.Items = nil

	_, err := svc.CreateSession(context.Background(), input)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateSession_InvalidEmail(t *testing.T) {
	svc, _, _, _, _ := newCheckoutService(t)

	input := validSessionInput()
	input.CustomerEmail = "not-an-email"

	_, err := svc.CreateSession(context.Background(), input)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateSession_MissingRedirectURLs(t *testing.T) {
	svc, _, _, _, _ := newCheckoutService(t)

	input := validSessionInput()
	input.CancelURL = ""

	_, err := svc.CreateSession(context.Background(), input)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateSession_ClampsQuantities(t *testing.T) {
	svc, prov, pending, _, events := newCheckoutService(t)

	input := validSessionInput()
	input.Items = []ItemInput{
		{Name: "Chupete", Quantity: 150, Price: 2.50},
		{Name: "Babero", Quantity: 0, Price: 5.00},
	}

	pending.On("Create", mock.Anything, mock.Anything).Return(nil)
	prov.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(in *provider.SessionInput) bool {
		return in.Items[0].Quantity == 99 && in.Items[1].Quantity == 1
	})).Return(&provider.SessionHandle{ID: "cs_1", URL: "https://pay/cs_1"}, nil)
	pending.On("AttachSession", mock.Anything, mock.Anything, "cs_1").Return(nil)
	events.On("PublishSessionCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateSession(context.Background(), input)
	require.NoError(t, err)
	prov.AssertExpectations(t)
}

func TestCreateSession_TruncatesMetadata(t *testing.T) {
	svc, prov, pending, _, events := newCheckoutService(t)

	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}

	input := validSessionInput()
	input.Metadata = map[string]string{"note": string(long)}

	pending.On("Create", mock.Anything, mock.Anything).Return(nil)
	prov.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(in *provider.SessionInput) bool {
		return len(in.Metadata["note"]) == domain.MetadataValueLimit
	})).Return(&provider.SessionHandle{ID: "cs_1", URL: "https://pay/cs_1"}, nil)
	pending.On("AttachSession", mock.Anything, mock.Anything, "cs_1").Return(nil)
	events.On("PublishSessionCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateSession(context.Background(), input)
	require.NoError(t, err)
	prov.AssertExpectations(t)
}

func TestCreateSession_ProviderFailureSurfaces(t *testing.T) {
	svc, prov, pending, _, _ := newCheckoutService(t)

	pending.On("Create", mock.Anything, mock.Anything).Return(nil)
	prov.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(nil, apperrors.PaymentFailed("card country not supported"))

	_, err := svc.CreateSession(context.Background(), validSessionInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
	assert.Contains(t, err.Error(), "card country not supported")
}

func TestCreateSession_AttachSessionFailureIsNonFatal(t *testing.T) {
	svc, prov, pending, _, events := newCheckoutService(t)

	pending.On("Create", mock.Anything, mock.Anything).Return(nil)
	prov.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(&provider.SessionHandle{ID: "cs_1", URL: "https://pay/cs_1"}, nil)
	pending.On("AttachSession", mock.Anything, mock.Anything, "cs_1").
		Return(errors.New("connection reset"))
	events.On("PublishSessionCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := svc.CreateSession(context.Background(), validSessionInput())
	require.NoError(t, err)
	assert.Equal(t, "cs_1", out.SessionID)
}

func TestCaptureAbandoned_Insert(t *testing.T) {
	svc, _, _, abandoned, _ := newCheckoutService(t)

	abandoned.On("Upsert", mock.Anything, mock.MatchedBy(func(ac *domain.AbandonedCheckout) bool {
		return ac.SessionID == "sess-1" && ac.Source == domain.AbandonedSourceStep1 &&
			ac.CartTotalCents == 12000
	})).Return("ab-1", false, nil)

	out, err := svc.CaptureAbandoned(context.Background(), &CaptureAbandonedInput{
		SessionID: "sess-1",
		Email:     "a@b.com",
		Items:     []ItemInput{{Name: "Cuna", Quantity: 1, Price: 120.00}},
		Source:    domain.AbandonedSourceStep1,
	})
	require.NoError(t, err)
	assert.Equal(t, "ab-1", out.ID)
	assert.False(t, out.Updated)
}

func TestCaptureAbandoned_InvalidSource(t *testing.T) {
	svc, _, _, _, _ := newCheckoutService(t)

	_, err := svc.CaptureAbandoned(context.Background(), &CaptureAbandonedInput{
		SessionID: "sess-1",
		Source:    "checkout_step_3",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
