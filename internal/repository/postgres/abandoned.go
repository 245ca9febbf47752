package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/database"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
)

// AbandonedCheckoutRepository implements
// repository.AbandonedCheckoutRepository using PostgreSQL.
type AbandonedCheckoutRepository struct {
	pool database.DBTX
	now  func() time.Time
}

// NewAbandonedCheckoutRepository creates a new PostgreSQL-backed abandoned
// checkout repository.
func NewAbandonedCheckoutRepository(pool database.DBTX) *AbandonedCheckoutRepository {
	return &AbandonedCheckoutRepository{pool: pool, now: time.Now}
}

// Upsert applies the capture window rule. A step-2 or cancel capture updates
// the most recent row for the same session created within the last 30
// minutes; anything else, or no row in the window, inserts a new row.
func (r *AbandonedCheckoutRepository) Upsert(ctx context.Context, ac *domain.AbandonedCheckout) (string, bool, error) {
	itemsJSON, err := json.Marshal(ac.CartItems)
	if err != nil {
		return "", false, fmt.Errorf("marshal cart items: %w", err)
	}

	if ac.Source == domain.AbandonedSourceStep2 || ac.Source == domain.AbandonedSourceCancel {
		cutoff := r.now().Add(-domain.AbandonedUpdateWindow)

		updateQuery := `
			UPDATE abandoned_checkouts
			SET email = $2, first_name = $3, last_name = $4, phone = $5, cart_items = $6, cart_total_cents = $7, source = $8, updated_at = NOW()
			WHERE id = (
				SELECT id FROM abandoned_checkouts
				WHERE session_id = $1 AND created_at > $9
				ORDER BY created_at DESC
				LIMIT 1
			)
			RETURNING id`

		var updatedID string
		err := r.pool.QueryRow(ctx, updateQuery,
			ac.SessionID,
			ac.Email,
			ac.FirstName,
			ac.LastName,
			ac.Phone,
			itemsJSON,
			ac.CartTotalCents,
			ac.Source,
			cutoff,
		).Scan(&updatedID)
		switch {
		case err == nil:
			return updatedID, true, nil
		case errors.Is(err, pgx.ErrNoRows):
			// Nothing in the window; fall through to insert.
		default:
			return "", false, fmt.Errorf("update abandoned checkout: %w", err)
		}
	}

	insertQuery := `
		INSERT INTO abandoned_checkouts (id, session_id, email, first_name, last_name, phone, cart_items, cart_total_cents, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.pool.Exec(ctx, insertQuery,
		ac.ID,
		ac.SessionID,
		ac.Email,
		ac.FirstName,
		ac.LastName,
		ac.Phone,
		itemsJSON,
		ac.CartTotalCents,
		ac.Source,
		ac.CreatedAt,
		ac.UpdatedAt,
	)
	if err != nil {
		return "", false, fmt.Errorf("insert abandoned checkout: %w", err)
	}
	return ac.ID, false, nil
}
