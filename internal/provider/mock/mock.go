package mock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/provider"
)

// Provider is a mock payment provider that always succeeds.
// It is intended for development and testing purposes.
type Provider struct {
	// CheckoutBaseURL is prefixed to the fake session id to form the
	// redirect URL. Defaults to an example host.
	CheckoutBaseURL string
}

// NewProvider creates a new mock payment provider.
func NewProvider() *Provider {
	return &Provider{CheckoutBaseURL: "https://checkout.mock.local/pay"}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// CreateCheckoutSession simulates session creation and always succeeds.
func (p *Provider) CreateCheckoutSession(_ context.Context, _ *provider.SessionInput) (*provider.SessionHandle, error) {
	// Simulate a small processing delay.
	time.Sleep(50 * time.Millisecond)

	id := "cs_mock_" + uuid.New().String()
	return &provider.SessionHandle{
		ID:  id,
		URL: p.CheckoutBaseURL + "/" + id,
	}, nil
}
