package market

import (
	"context"
	"time"

	"market-sync/core/upsert"

	"gorm.io/gorm"
)

// UpdateLog records one table reconciliation for operational history.
type UpdateLog struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Table     string    `gorm:"column:table_name"`
	Deleted   int64     `gorm:"column:rows_deleted"`
	Inserted  int64     `gorm:"column:rows_inserted"`
	Updated   int64     `gorm:"column:rows_updated"`
	Skipped   int64     `gorm:"column:rows_skipped"`
	Timestamp time.Time `gorm:"column:timestamp"`
}

// TableName implements the gorm table name override.
func (UpdateLog) TableName() string { return "update_log" }

// recordUpdate appends one reconciliation record. Best effort: failures are
// returned for logging but must not fail the cycle.
func recordUpdate(ctx context.Context, db *gorm.DB, table string, stats upsert.Stats) error {
	entry := UpdateLog{
		Table:     table,
		Deleted:   stats.Deleted,
		Inserted:  stats.Inserted,
		Updated:   stats.Updated,
		Skipped:   stats.Skipped,
		Timestamp: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(&entry).Error
}
