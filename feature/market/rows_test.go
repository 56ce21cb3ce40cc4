package market

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRows(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{
			"order_id": 6312345678,
			"type_id": 34,
			"duration": 90,
			"is_buy_order": true,
			"issued": "2026-08-30T14:00:00Z",
			"location_id": 60008494,
			"min_volume": 1,
			"price": 5.55,
			"range": "region",
			"system_id": 30002510,
			"volume_remain": 1000,
			"volume_total": 5000
		}`),
	}

	rows, err := OrderRows(raw)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, int64(6312345678), row["order_id"])
	assert.Equal(t, int64(34), row["type_id"])
	assert.Equal(t, true, row["is_buy_order"])
	assert.Equal(t, 5.55, row["price"])
	assert.Equal(t, "region", row["range"])
	assert.Equal(t, time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC), row["issued"])
}

func TestOrderRowsDecodeError(t *testing.T) {
	_, err := OrderRows([]json.RawMessage{json.RawMessage(`{"order_id": "broken"`)})
	assert.Error(t, err)
}

func TestHistoryRows(t *testing.T) {
	payload := []byte(`[
		{"date": "2026-08-29", "average": 5.5, "highest": 6.0, "lowest": 5.0, "order_count": 120, "volume": 90000},
		{"date": "2026-08-30", "average": 5.6, "highest": 6.1, "lowest": 5.1, "order_count": 130, "volume": 91000}
	]`)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	rows, err := HistoryRows(34, payload, now)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(34), rows[0]["type_id"])
	assert.Equal(t, "2026-08-29", rows[0]["date"])
	assert.Equal(t, 5.5, rows[0]["average"])
	assert.Equal(t, int64(90000), rows[0]["volume"])
	assert.Equal(t, now, rows[0]["timestamp"])
	assert.Equal(t, "2026-08-30", rows[1]["date"])
}

func TestHistoryRowsEmptyPayload(t *testing.T) {
	rows, err := HistoryRows(34, []byte(`[]`), time.Now())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
