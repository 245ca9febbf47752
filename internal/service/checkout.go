package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/errors"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/provider"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EventPublisher publishes storefront domain events. Satisfied by
// *event.Producer.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishSessionCreated(ctx context.Context, sessionID, pendingOrderID, customerEmail string, totalCents int64) error
}

// CheckoutService builds hosted payment sessions and captures abandoned
// checkouts.
type CheckoutService struct {
	provider      provider.Provider
	pendingOrders repository.PendingOrderRepository
	abandoned     repository.AbandonedCheckoutRepository
	events        EventPublisher
	currency      string
	logger        *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	paymentProvider provider.Provider,
	pendingOrders repository.PendingOrderRepository,
	abandoned repository.AbandonedCheckoutRepository,
	events EventPublisher,
	currency string,
	logger *slog.Logger,
) *CheckoutService {
	if currency == "" {
		currency = "eur"
	}
	return &CheckoutService{
		provider:      paymentProvider,
		pendingOrders: pendingOrders,
		abandoned:     abandoned,
		events:        events,
		currency:      currency,
		logger:        logger,
	}
}

// ItemInput is one cart line as submitted by the storefront, with the unit
// price in euros.
type ItemInput struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
}

// CreateSessionInput holds the parameters for creating a checkout session.
type CreateSessionInput struct {
	Items           []ItemInput
	CustomerEmail   string
	SuccessURL      string
	CancelURL       string
	Metadata        map[string]string
	Customer        domain.Customer
	ShippingAddress domain.ShippingAddress
	ShippingService domain.ShippingService
}

// SessionOutput is returned to the storefront so it can redirect the
// customer to the hosted payment page.
type SessionOutput struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateSession validates the cart, records a pending order, and creates a
// hosted checkout session with the payment provider.
func (s *CheckoutService) CreateSession(ctx context.Context, input *CreateSessionInput) (*SessionOutput, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}
	if !emailPattern.MatchString(input.CustomerEmail) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid customer email %q", input.CustomerEmail))
	}
	if input.SuccessURL == "" || input.CancelURL == "" {
		return nil, apperrors.InvalidInput("success_url and cancel_url are required")
	}

	items := make([]domain.CartItem, 0, len(input.Items))
	for _, in := range input.Items {
		if in.Name == "" {
			return nil, apperrors.InvalidInput("item name is required")
		}
		items = append(items, domain.CartItem{
			Name:           in.Name,
			Quantity:       domain.ClampQuantity(in.Quantity),
			UnitPriceCents: domain.PriceToCents(in.Price),
			ImageURL:       in.ImageURL,
		})
	}

	subtotal := domain.CartTotal(items)
	total := subtotal + s.ShippingCost(input.ShippingService)

	customer := input.Customer
	if customer.Email == "" {
		customer.Email = input.CustomerEmail
	}

	now := time.Now().UTC()
	pending := &domain.PendingOrder{
		ID:              uuid.New().String(),
		Customer:        customer,
		ShippingAddress: input.ShippingAddress,
		ShippingService: input.ShippingService,
		Items:           items,
		SubtotalCents:   subtotal,
		TotalCents:      total,
		Status:          domain.PendingStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.pendingOrders.Create(ctx, pending); err != nil {
		return nil, fmt.Errorf("create pending order: %w", err)
	}

	// The metadata bag only references the pending order; the full customer
	// and shipping context lives in the pending_orders row.
	metadata := map[string]string{
		"pending_order_id": pending.ID,
		"customer_email":   input.CustomerEmail,
	}
	for k, v := range input.Metadata {
		metadata[k] = domain.TruncateMetadataValue(v)
	}

	handle, err := s.provider.CreateCheckoutSession(ctx, &provider.SessionInput{
		Items:         items,
		CustomerEmail: input.CustomerEmail,
		SuccessURL:    input.SuccessURL,
		CancelURL:     input.CancelURL,
		Currency:      s.currency,
		Metadata:      metadata,
	})
	if err != nil {
		return nil, err
	}

	if err := s.pendingOrders.AttachSession(ctx, pending.ID, handle.ID); err != nil {
		// The webhook can still resolve the pending order through metadata.
		s.logger.WarnContext(ctx, "failed to attach session to pending order",
			slog.String("pending_order_id", pending.ID),
			slog.String("session_id", handle.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.events.PublishSessionCreated(ctx, handle.ID, pending.ID, input.CustomerEmail, total); err != nil {
		s.logger.WarnContext(ctx, "failed to publish session created event",
			slog.String("session_id", handle.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("session_id", handle.ID),
		slog.String("pending_order_id", pending.ID),
		slog.Int64("total_cents", total),
	)

	return &SessionOutput{SessionID: handle.ID, URL: handle.URL}, nil
}

// ShippingCost returns the cost component of a shipping service selection.
func (s *CheckoutService) ShippingCost(svc domain.ShippingService) int64 {
	if svc.CostCents < 0 {
		return 0
	}
	return svc.CostCents
}

// CaptureAbandonedInput holds the parameters for an abandoned checkout
// capture.
type CaptureAbandonedInput struct {
	SessionID string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Items     []ItemInput
	Source    string
}

// CaptureAbandonedOutput reports the stored row and whether an existing row
// in the 30-minute window was updated.
type CaptureAbandonedOutput struct {
	ID      string `json:"id"`
	Updated bool   `json:"updated"`
}

// CaptureAbandoned records or updates an abandoned checkout.
func (s *CheckoutService) CaptureAbandoned(ctx context.Context, input *CaptureAbandonedInput) (*CaptureAbandonedOutput, error) {
	if input.SessionID == "" {
		return nil, apperrors.InvalidInput("session_id is required")
	}
	if !domain.IsValidAbandonedSource(input.Source) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid source %q", input.Source))
	}
	if input.Email != "" && !emailPattern.MatchString(input.Email) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid email %q", input.Email))
	}

	items := make([]domain.CartItem, 0, len(input.Items))
	for _, in := range input.Items {
		items = append(items, domain.CartItem{
			Name:           in.Name,
			Quantity:       domain.ClampQuantity(in.Quantity),
			UnitPriceCents: domain.PriceToCents(in.Price),
			ImageURL:       in.ImageURL,
		})
	}

	now := time.Now().UTC()
	record := &domain.AbandonedCheckout{
		ID:             uuid.New().String(),
		SessionID:      input.SessionID,
		Email:          input.Email,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Phone:          input.Phone,
		CartItems:      items,
		CartTotalCents: domain.CartTotal(items),
		Source:         input.Source,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, updated, err := s.abandoned.Upsert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("capture abandoned checkout: %w", err)
	}

	s.logger.InfoContext(ctx, "abandoned checkout captured",
		slog.String("session_id", input.SessionID),
		slog.String("source", input.Source),
		slog.Bool("updated", updated),
	)

	return &CaptureAbandonedOutput{ID: id, Updated: updated}, nil
}
