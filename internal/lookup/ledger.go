package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const ledgerPrefix = "email_sent:"

// EmailLedger records which checkout sessions already had their confirmation
// emails dispatched, so webhook redelivery never resends. Claims are made
// with SETNX: the first caller wins, everyone after sees sent=true.
type EmailLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEmailLedger creates a send-once ledger. A zero TTL keeps claims forever.
func NewEmailLedger(client *redis.Client, ttl time.Duration) *EmailLedger {
	return &EmailLedger{client: client, ttl: ttl}
}

// Claim attempts to mark the session's emails as sent. It returns true when
// this caller made the claim and should dispatch, false when the emails were
// already claimed by an earlier delivery.
func (l *EmailLedger) Claim(ctx context.Context, sessionID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, ledgerPrefix+sessionID, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim email ledger %s: %w", sessionID, err)
	}
	return ok, nil
}

// Release drops the claim so a later delivery can retry the sends. Called
// when dispatch fails after a successful claim.
func (l *EmailLedger) Release(ctx context.Context, sessionID string) error {
	if err := l.client.Del(ctx, ledgerPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("release email ledger %s: %w", sessionID, err)
	}
	return nil
}
