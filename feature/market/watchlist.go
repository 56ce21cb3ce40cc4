package market

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Watchlist returns the distinct type ids being tracked, the fetch targets
// for each cycle.
func Watchlist(ctx context.Context, db *gorm.DB) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).
		Raw("SELECT DISTINCT type_id FROM watchlist ORDER BY type_id").
		Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	return ids, nil
}
