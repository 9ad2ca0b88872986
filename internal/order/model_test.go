package order_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrovendas/sales-api/internal/order"
)

func TestUnmarshalLegacyLinesArePinned(t *testing.T) {
	// Payload written before the manualPrice flag existed.
	legacy := []byte(`{
		"id": "ord-legacy",
		"status": "awaiting_approval",
		"order": {
			"lines": [
				{"productId": "sup-1", "quantity": 100, "unitPrice": 950, "lineTotal": 95000, "priced": true}
			],
			"totalAmount": 95000,
			"paymentMethod": "upfront"
		}
	}`)

	var rec order.Record
	require.NoError(t, json.Unmarshal(legacy, &rec))
	require.True(t, rec.Order.Lines[0].ManualPrice, "legacy price must be treated as pinned")
	require.Equal(t, int64(950), rec.Order.Lines[0].UnitPrice)
}

func TestUnmarshalKeepsExplicitFlag(t *testing.T) {
	current := []byte(`{
		"id": "ord-1",
		"order": {
			"lines": [
				{"productId": "sup-1", "quantity": 100, "unitPrice": 1000, "manualPrice": false, "priced": true},
				{"productId": "sup-2", "quantity": 10, "unitPrice": 750, "manualPrice": true, "priced": true}
			]
		}
	}`)

	var rec order.Record
	require.NoError(t, json.Unmarshal(current, &rec))
	require.False(t, rec.Order.Lines[0].ManualPrice)
	require.True(t, rec.Order.Lines[1].ManualPrice)
}

func TestRecordJSONRoundTrip(t *testing.T) {
	rec := sampleRecord("ord-1")
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var back order.Record
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, rec, back)
}

func TestStatusValid(t *testing.T) {
	require.True(t, order.StatusAwaitingApproval.Valid())
	require.True(t, order.StatusValidated.Valid())
	require.False(t, order.Status("shipped").Valid())
}
