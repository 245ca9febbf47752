package stripe

import (
	"context"
	"errors"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	apperrors "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/errors"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/provider"
)

// Provider creates hosted checkout sessions through the Stripe API. The API
// key is injected at construction; no package-level state.
type Provider struct {
	api *client.API
}

// NewProvider creates a Stripe-backed provider with the given secret key.
func NewProvider(secretKey string) *Provider {
	return &Provider{api: client.New(secretKey, nil)}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stripe"
}

// CreateCheckoutSession creates a Stripe Checkout session in payment mode.
// Provider rejections surface as payment errors carrying Stripe's message.
func (p *Provider) CreateCheckoutSession(ctx context.Context, input *provider.SessionInput) (*provider.SessionHandle, error) {
	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL: stripeapi.String(input.SuccessURL),
		CancelURL:  stripeapi.String(input.CancelURL),
		LineItems:  make([]*stripeapi.CheckoutSessionLineItemParams, 0, len(input.Items)),
	}
	params.Context = ctx

	if input.CustomerEmail != "" {
		params.CustomerEmail = stripeapi.String(input.CustomerEmail)
	}

	currency := input.Currency
	if currency == "" {
		currency = "eur"
	}

	for _, item := range input.Items {
		priceData := &stripeapi.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripeapi.String(currency),
			UnitAmount: stripeapi.Int64(item.UnitPriceCents),
			ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripeapi.String(item.Name),
			},
		}
		if item.ImageURL != "" {
			priceData.ProductData.Images = []*string{stripeapi.String(item.ImageURL)}
		}
		params.LineItems = append(params.LineItems, &stripeapi.CheckoutSessionLineItemParams{
			PriceData: priceData,
			Quantity:  stripeapi.Int64(int64(item.Quantity)),
		})
	}

	for k, v := range input.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		var stripeErr *stripeapi.Error
		if errors.As(err, &stripeErr) {
			return nil, apperrors.PaymentFailed(stripeErr.Msg)
		}
		return nil, apperrors.Upstream("stripe", err.Error())
	}

	return &provider.SessionHandle{ID: session.ID, URL: session.URL}, nil
}
