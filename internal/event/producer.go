package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/kafka"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
)

// Kafka topic constants for storefront domain events.
const (
	TopicOrderCreated   = "ebaby.order.created"
	TopicSessionCreated = "ebaby.checkout.session_created"
)

// Aggregate type constants.
const (
	AggregateTypeOrder           = "order"
	AggregateTypeCheckoutSession = "checkout_session"
)

// Source identifier for events originating from the storefront service.
const SourceStorefront = "storefront"

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID           string `json:"order_id"`
	InternalReference string `json:"internal_reference"`
	CheckoutSessionID string `json:"checkout_session_id"`
	CustomerEmail     string `json:"customer_email"`
	TotalCents        int64  `json:"total_cents"`
	PaymentMethod     string `json:"payment_method"`
}

// SessionCreatedData is the payload for a checkout.session_created event.
type SessionCreatedData struct {
	SessionID      string `json:"session_id"`
	PendingOrderID string `json:"pending_order_id"`
	CustomerEmail  string `json:"customer_email,omitempty"`
	TotalCents     int64  `json:"total_cents"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		OrderID:           order.ID,
		InternalReference: order.InternalReference,
		CheckoutSessionID: order.CheckoutSessionID,
		CustomerEmail:     order.Customer.Email,
		TotalCents:        order.TotalCents,
		PaymentMethod:     order.PaymentMethod,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("checkout_session_id", order.CheckoutSessionID),
	)

	return nil
}

// PublishSessionCreated publishes a checkout.session_created event.
func (p *Producer) PublishSessionCreated(ctx context.Context, sessionID, pendingOrderID, customerEmail string, totalCents int64) error {
	data := SessionCreatedData{
		SessionID:      sessionID,
		PendingOrderID: pendingOrderID,
		CustomerEmail:  customerEmail,
		TotalCents:     totalCents,
	}

	event, err := pkgkafka.NewEvent(TopicSessionCreated, sessionID, AggregateTypeCheckoutSession, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create checkout.session_created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSessionCreated, event); err != nil {
		return fmt.Errorf("publish checkout.session_created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.session_created event",
		slog.String("session_id", sessionID),
		slog.String("pending_order_id", pendingOrderID),
	)

	return nil
}
