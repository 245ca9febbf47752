package provider

import (
	"context"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
)

// SessionInput holds the parameters for creating a hosted checkout session.
type SessionInput struct {
	Items         []domain.CartItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Currency      string
	Metadata      map[string]string
}

// SessionHandle identifies a created checkout session. The caller redirects
// the customer to URL; ID is used later to look up the resulting order.
type SessionHandle struct {
	ID  string
	URL string
}

// Provider defines the interface for hosted-checkout payment integrations.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "stripe").
	Name() string

	// CreateCheckoutSession creates a hosted payment page for the cart.
	CreateCheckoutSession(ctx context.Context, input *SessionInput) (*SessionHandle, error)
}
