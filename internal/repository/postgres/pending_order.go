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

// PendingOrderRepository implements repository.PendingOrderRepository using
// PostgreSQL.
type PendingOrderRepository struct {
	pool database.DBTX
}

// NewPendingOrderRepository creates a new PostgreSQL-backed pending order
// repository.
func NewPendingOrderRepository(pool database.DBTX) *PendingOrderRepository {
	return &PendingOrderRepository{pool: pool}
}

// Create inserts a new pending order.
func (r *PendingOrderRepository) Create(ctx context.Context, po *domain.PendingOrder) error {
	customerJSON, err := json.Marshal(po.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	addressJSON, err := json.Marshal(po.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}
	serviceJSON, err := json.Marshal(po.ShippingService)
	if err != nil {
		return fmt.Errorf("marshal shipping service: %w", err)
	}
	itemsJSON, err := json.Marshal(po.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	query := `
		INSERT INTO pending_orders (id, checkout_session_id, customer, shipping_address, shipping_service, items, subtotal_cents, total_cents, status, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.pool.Exec(ctx, query,
		po.ID,
		po.CheckoutSessionID,
		customerJSON,
		addressJSON,
		serviceJSON,
		itemsJSON,
		po.SubtotalCents,
		po.TotalCents,
		po.Status,
		po.CreatedAt,
		po.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pending order: %w", err)
	}
	return nil
}

// GetByID retrieves a pending order by id.
func (r *PendingOrderRepository) GetByID(ctx context.Context, id string) (*domain.PendingOrder, error) {
	query := `
		SELECT id, COALESCE(checkout_session_id, ''), customer, shipping_address, shipping_service, items, subtotal_cents, total_cents, status, created_at, updated_at
		FROM pending_orders
		WHERE id = $1`

	var (
		po           domain.PendingOrder
		customerJSON []byte
		addressJSON  []byte
		serviceJSON  []byte
		itemsJSON    []byte
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&po.ID,
		&po.CheckoutSessionID,
		&customerJSON,
		&addressJSON,
		&serviceJSON,
		&itemsJSON,
		&po.SubtotalCents,
		&po.TotalCents,
		&po.Status,
		&po.CreatedAt,
		&po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("pending order", id)
		}
		return nil, fmt.Errorf("get pending order: %w", err)
	}

	if err := json.Unmarshal(customerJSON, &po.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &po.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if err := json.Unmarshal(serviceJSON, &po.ShippingService); err != nil {
		return nil, fmt.Errorf("unmarshal shipping service: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &po.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}

	return &po, nil
}

// AttachSession records the checkout session id issued by the provider.
func (r *PendingOrderRepository) AttachSession(ctx context.Context, id, sessionID string) error {
	query := `UPDATE pending_orders SET checkout_session_id = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, sessionID)
	if err != nil {
		return fmt.Errorf("attach session to pending order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("pending order", id)
	}
	return nil
}

// MarkCompleted transitions the pending order to completed.
func (r *PendingOrderRepository) MarkCompleted(ctx context.Context, id string) error {
	query := `UPDATE pending_orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, domain.PendingStatusCompleted)
	if err != nil {
		return fmt.Errorf("mark pending order completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("pending order", id)
	}
	return nil
}
