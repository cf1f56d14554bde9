package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParsePayloadModified(t *testing.T) {
	raw := []byte(`{
		"type": "modified",
		"order_id": "4f6e0a51-9f1c-4f4e-a1da-0d6a0c8f0a11",
		"customer_id": "628123456789",
		"customer_name": "Budi",
		"food_item": "Nasi Goreng",
		"payment_method": "QRIS",
		"status": "preparing",
		"created_at": "2025-03-14T09:26:53.123456Z"
	}`)

	event, err := ParsePayload(raw)
	require.NoError(t, err)
	require.Equal(t, Modified, event.Type)
	require.Equal(t, "4f6e0a51-9f1c-4f4e-a1da-0d6a0c8f0a11", event.Order.ID)
	require.Equal(t, "628123456789", event.Order.CustomerID)
	require.Equal(t, "preparing", event.Order.Status)
	require.Equal(t,
		time.Date(2025, 3, 14, 9, 26, 53, 123456000, time.UTC),
		event.Order.CreatedAt.UTC())
}

func TestParsePayloadRejectsUnknownType(t *testing.T) {
	raw := []byte(`{"type":"truncated","order_id":"x","customer_id":"y","created_at":"2025-03-14T09:26:53Z"}`)
	_, err := ParsePayload(raw)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown event type")
}

func TestParsePayloadRejectsMissingIdentifiers(t *testing.T) {
	for name, raw := range map[string]string{
		"no order id":    `{"type":"added","customer_id":"628","created_at":"2025-03-14T09:26:53Z"}`,
		"no customer id": `{"type":"added","order_id":"ord-1","created_at":"2025-03-14T09:26:53Z"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePayload([]byte(raw))
			require.Error(t, err)
		})
	}
}

func TestParsePayloadRejectsGarbage(t *testing.T) {
	_, err := ParsePayload([]byte("not json at all"))
	require.Error(t, err)
}

func TestParsePayloadRejectsBadTimestamp(t *testing.T) {
	raw := []byte(`{"type":"added","order_id":"ord-1","customer_id":"628","created_at":"yesterday"}`)
	_, err := ParsePayload(raw)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad created_at")
}
