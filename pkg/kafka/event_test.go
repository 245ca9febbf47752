package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]any{"order_id": "ord-1", "total_cents": 4599}

	event, err := NewEvent("order.created", "ord-1", "order", "storefront", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "order.created", event.EventType)
	assert.Equal(t, "ord-1", event.AggregateID)
	assert.Equal(t, "order", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEventRoundTrip(t *testing.T) {
	event, err := NewEvent("checkout.session_created", "cs_test_1", "checkout_session", "storefront",
		map[string]string{"session_id": "cs_test_1"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-42").WithMetadata("channel", "web")

	data, err := event.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(data)
	require.NoError(t, err)

	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-42", decoded.CorrelationID)
	assert.Equal(t, "web", decoded.Metadata["channel"])

	var payload map[string]string
	require.NoError(t, decoded.UnmarshalData(&payload))
	assert.Equal(t, "cs_test_1", payload["session_id"])
}
