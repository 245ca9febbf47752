package domain

import "time"

// Pending order status constants.
const (
	PendingStatusPending   = "pending"
	PendingStatusCompleted = "completed"
	PendingStatusExpired   = "expired"
)

// PendingOrder is created before the customer is redirected to the hosted
// payment page. It carries the full customer and shipping context so the
// provider metadata bag only needs to reference its id. The webhook
// transitions it to completed when the payment succeeds.
type PendingOrder struct {
	ID                string          `json:"id"`
	CheckoutSessionID string          `json:"checkout_session_id,omitempty"`
	Customer          Customer        `json:"customer"`
	ShippingAddress   ShippingAddress `json:"shipping_address"`
	ShippingService   ShippingService `json:"shipping_service"`
	Items             []CartItem      `json:"items"`
	SubtotalCents     int64           `json:"subtotal_cents"`
	TotalCents        int64           `json:"total_cents"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
