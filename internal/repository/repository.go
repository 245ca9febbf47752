package repository

import (
	"context"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
)

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Upsert inserts the order or, when a row for the same checkout session
	// already exists, leaves it untouched and reports inserted=false.
	Upsert(ctx context.Context, order *domain.Order) (inserted bool, err error)

	// GetBySessionID retrieves an order by its checkout session id.
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
}

// PendingOrderRepository persists the pre-payment order context created
// before redirecting the customer to the hosted checkout page.
type PendingOrderRepository interface {
	// Create inserts a new pending order.
	Create(ctx context.Context, po *domain.PendingOrder) error

	// GetByID retrieves a pending order by id.
	GetByID(ctx context.Context, id string) (*domain.PendingOrder, error)

	// AttachSession records the checkout session id once the provider has
	// issued one.
	AttachSession(ctx context.Context, id, sessionID string) error

	// MarkCompleted transitions the pending order to completed.
	MarkCompleted(ctx context.Context, id string) error
}

// AbandonedCheckoutRepository captures checkouts the customer walked away from.
type AbandonedCheckoutRepository interface {
	// Upsert applies the 30-minute window rule: a step-2/cancel capture
	// updates the most recent row for the same session created within the
	// window; otherwise a new row is inserted. It returns the id of the
	// stored row and whether an existing row was updated.
	Upsert(ctx context.Context, ac *domain.AbandonedCheckout) (id string, updated bool, err error)
}
