package webhook

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

var completedPayload = []byte(`{
	"id": "evt_1",
	"type": "checkout.session.completed",
	"data": {
		"object": {
			"id": "cs_test_123",
			"customer_email": "ana@example.com",
			"amount_total": 12750,
			"currency": "eur",
			"payment_status": "paid",
			"metadata": {"pending_order_id": "po-1"}
		}
	}
}`)

func TestVerify_ValidSignature(t *testing.T) {
	now := time.Now()
	v := NewVerifier(testSecret, WithClock(func() time.Time { return now }))

	header := Sign(completedPayload, testSecret, now)

	event, err := v.Verify(completedPayload, header)
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", event.Type)

	session, err := event.Session()
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", session.ID)
	assert.Equal(t, "ana@example.com", session.CustomerEmail)
	assert.Equal(t, "po-1", session.Metadata["pending_order_id"])
}

func TestVerify_PayloadMutationFails(t *testing.T) {
	now := time.Now()
	v := NewVerifier(testSecret, WithClock(func() time.Time { return now }))

	header := Sign(completedPayload, testSecret, now)

	mutated := make([]byte, len(completedPayload))
	copy(mutated, completedPayload)
	mutated[len(mutated)/2] ^= 0x01

	_, err := v.Verify(mutated, header)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Now()
	v := NewVerifier(testSecret, WithClock(func() time.Time { return now }))

	header := Sign(completedPayload, "whsec_other", now)

	_, err := v.Verify(completedPayload, header)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerify_MalformedHeader(t *testing.T) {
	v := NewVerifier(testSecret)

	for _, header := range []string{
		"",
		"t=123",
		"v1=abcdef",
		"garbage",
	} {
		_, err := v.Verify(completedPayload, header)
		assert.ErrorIs(t, err, ErrMalformedHeader, "header %q", header)
	}
}

func TestVerify_MalformedPayload(t *testing.T) {
	now := time.Now()
	v := NewVerifier(testSecret, WithClock(func() time.Time { return now }))

	payload := []byte(`{not json`)
	header := Sign(payload, testSecret, now)

	_, err := v.Verify(payload, header)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestVerify_StaleTimestamp(t *testing.T) {
	now := time.Now()
	v := NewVerifier(testSecret, WithClock(func() time.Time { return now }))

	header := Sign(completedPayload, testSecret, now.Add(-10*time.Minute))

	_, err := v.Verify(completedPayload, header)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerify_ToleranceZeroDisablesFreshnessCheck(t *testing.T) {
	now := time.Now()
	v := NewVerifier(testSecret,
		WithClock(func() time.Time { return now }),
		WithTolerance(0),
	)

	header := Sign(completedPayload, testSecret, now.Add(-24*time.Hour))

	_, err := v.Verify(completedPayload, header)
	assert.NoError(t, err)
}

func TestVerify_HeaderWithSpaces(t *testing.T) {
	now := time.Now()
	v := NewVerifier(testSecret, WithClock(func() time.Time { return now }))

	ts := strconv.FormatInt(now.Unix(), 10)
	header := "t=" + ts + ", v1=" + ComputeSignature(completedPayload, testSecret, ts)

	_, err := v.Verify(completedPayload, header)
	assert.NoError(t, err)
}
