package domain

import "time"

// Customer holds the buyer contact fields captured at checkout.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

// ShippingAddress is the delivery address for an order.
type ShippingAddress struct {
	Country  string `json:"country"`
	Postcode string `json:"postcode"`
	Town     string `json:"town"`
	Address  string `json:"address"`
}

// ShippingService is the carrier option chosen at checkout.
type ShippingService struct {
	Name      string `json:"name"`
	CostCents int64  `json:"cost_cents"`
}

// Order is a durable record of a completed payment. Rows are keyed by the
// provider checkout session id so webhook redelivery converges on one row.
type Order struct {
	ID                string          `json:"id"`
	InternalReference string          `json:"internal_reference"`
	CheckoutSessionID string          `json:"checkout_session_id"`
	Customer          Customer        `json:"customer"`
	ShippingAddress   ShippingAddress `json:"shipping_address"`
	ShippingService   ShippingService `json:"shipping_service"`
	SubtotalCents     int64           `json:"subtotal_cents"`
	ShippingCents     int64           `json:"shipping_cents"`
	TotalCents        int64           `json:"total_cents"`
	PaymentMethod     string          `json:"payment_method"`
	CreatedAt         time.Time       `json:"created_at"`
}

// OrderSnapshot is the client-facing subset of an order served to the
// success page via the session lookup store.
type OrderSnapshot struct {
	OrderID         string          `json:"order_id"`
	ShippingOption  ShippingService `json:"shipping_option"`
	CustomerInfo    Customer        `json:"customer_info"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	TotalCents      int64           `json:"total_cents"`
}

// Snapshot derives the lookup-store view from a full order.
func (o *Order) Snapshot() OrderSnapshot {
	return OrderSnapshot{
		OrderID:         o.InternalReference,
		ShippingOption:  o.ShippingService,
		CustomerInfo:    o.Customer,
		ShippingAddress: o.ShippingAddress,
		TotalCents:      o.TotalCents,
	}
}
