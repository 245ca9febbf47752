package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/database"

	apperrors "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/errors"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Upsert inserts the order keyed by its checkout session id. Webhook
// redelivery hits the conflict target and leaves the existing row untouched.
func (r *OrderRepository) Upsert(ctx context.Context, o *domain.Order) (bool, error) {
	customerJSON, err := json.Marshal(o.Customer)
	if err != nil {
		return false, fmt.Errorf("marshal customer: %w", err)
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return false, fmt.Errorf("marshal shipping address: %w", err)
	}
	serviceJSON, err := json.Marshal(o.ShippingService)
	if err != nil {
		return false, fmt.Errorf("marshal shipping service: %w", err)
	}

	query := `
		INSERT INTO orders (id, internal_reference, checkout_session_id, customer, shipping_address, shipping_service, subtotal_cents, shipping_cents, total_cents, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (checkout_session_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		o.ID,
		o.InternalReference,
		o.CheckoutSessionID,
		customerJSON,
		addressJSON,
		serviceJSON,
		o.SubtotalCents,
		o.ShippingCents,
		o.TotalCents,
		o.PaymentMethod,
		o.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("upsert order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetBySessionID retrieves an order by its checkout session id.
func (r *OrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	query := `
		SELECT id, internal_reference, checkout_session_id, customer, shipping_address, shipping_service, subtotal_cents, shipping_cents, total_cents, payment_method, created_at
		FROM orders
		WHERE checkout_session_id = $1`

	var (
		o            domain.Order
		customerJSON []byte
		addressJSON  []byte
		serviceJSON  []byte
	)

	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&o.ID,
		&o.InternalReference,
		&o.CheckoutSessionID,
		&customerJSON,
		&addressJSON,
		&serviceJSON,
		&o.SubtotalCents,
		&o.ShippingCents,
		&o.TotalCents,
		&o.PaymentMethod,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order for session", sessionID)
		}
		return nil, fmt.Errorf("get order by session: %w", err)
	}

	if err := json.Unmarshal(customerJSON, &o.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if err := json.Unmarshal(serviceJSON, &o.ShippingService); err != nil {
		return nil, fmt.Errorf("unmarshal shipping service: %w", err)
	}

	return &o, nil
}
