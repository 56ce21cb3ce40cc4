package market

import (
	"encoding/json"
	"fmt"
	"time"

	"market-sync/core/upsert"
)

// order matches one entry of the ESI region order listing.
type order struct {
	OrderID      int64     `json:"order_id"`
	TypeID       int64     `json:"type_id"`
	Duration     int64     `json:"duration"`
	IsBuyOrder   bool      `json:"is_buy_order"`
	Issued       time.Time `json:"issued"`
	LocationID   int64     `json:"location_id"`
	MinVolume    int64     `json:"min_volume"`
	Price        float64   `json:"price"`
	Range        string    `json:"range"`
	SystemID     int64     `json:"system_id"`
	VolumeRemain int64     `json:"volume_remain"`
	VolumeTotal  int64     `json:"volume_total"`
}

// OrderRows reshapes raw order payloads into rows for the marketorders spec.
func OrderRows(raw []json.RawMessage) ([]upsert.Row, error) {
	rows := make([]upsert.Row, 0, len(raw))
	for i, payload := range raw {
		var o order
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, fmt.Errorf("order %d: decode: %w", i, err)
		}
		rows = append(rows, upsert.Row{
			"order_id":      o.OrderID,
			"type_id":       o.TypeID,
			"duration":      o.Duration,
			"is_buy_order":  o.IsBuyOrder,
			"issued":        o.Issued,
			"location_id":   o.LocationID,
			"min_volume":    o.MinVolume,
			"price":         o.Price,
			"range":         o.Range,
			"system_id":     o.SystemID,
			"volume_remain": o.VolumeRemain,
			"volume_total":  o.VolumeTotal,
		})
	}
	return rows, nil
}

// historyDay matches one entry of the ESI market history listing.
type historyDay struct {
	Date       string  `json:"date"`
	Average    float64 `json:"average"`
	Highest    float64 `json:"highest"`
	Lowest     float64 `json:"lowest"`
	OrderCount int64   `json:"order_count"`
	Volume     int64   `json:"volume"`
}

// HistoryRows reshapes one type's history payload into rows for the
// market_history spec, stamping each row with the cycle time.
func HistoryRows(typeID int64, payload []byte, now time.Time) ([]upsert.Row, error) {
	var days []historyDay
	if err := json.Unmarshal(payload, &days); err != nil {
		return nil, fmt.Errorf("history type %d: decode: %w", typeID, err)
	}

	rows := make([]upsert.Row, 0, len(days))
	for _, d := range days {
		rows = append(rows, upsert.Row{
			"type_id":     typeID,
			"date":        d.Date,
			"average":     d.Average,
			"highest":     d.Highest,
			"lowest":      d.Lowest,
			"order_count": d.OrderCount,
			"volume":      d.Volume,
			"timestamp":   now,
		})
	}
	return rows, nil
}
