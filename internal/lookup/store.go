package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/errors"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
)

const keyPrefix = "stripe_session:"

// Store maps checkout session ids to client-facing order snapshots. The
// success page reads it right after the customer returns from payment; the
// webhook writes it. Writes are upserts, so webhook redelivery converges on
// the same value.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a lookup store. A zero TTL means entries never expire.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Key returns the redis key for a session id.
func Key(sessionID string) string {
	return keyPrefix + sessionID
}

// Put upserts the snapshot for a session id.
func (s *Store) Put(ctx context.Context, sessionID string, snapshot *domain.OrderSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, Key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("write lookup entry %s: %w", sessionID, err)
	}
	return nil
}

// Get returns the snapshot for a session id, or a not-found error.
func (s *Store) Get(ctx context.Context, sessionID string) (*domain.OrderSnapshot, error) {
	data, err := s.client.Get(ctx, Key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("order for session", sessionID)
		}
		return nil, fmt.Errorf("read lookup entry %s: %w", sessionID, err)
	}

	var snapshot domain.OrderSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal lookup entry %s: %w", sessionID, err)
	}
	return &snapshot, nil
}
