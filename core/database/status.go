package database

import (
	"context"
	"fmt"
)

// ListTables returns the user tables in the local database.
func (h *Handles) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := h.DB.WithContext(ctx).
		Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").
		Scan(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// TableCounts returns the row count per user table, for the status command
// and post-cycle reporting.
func (h *Handles) TableCounts(ctx context.Context) (map[string]int64, error) {
	tables, err := h.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		var count int64
		if err := h.DB.WithContext(ctx).Raw(fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, table)).Scan(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count table %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}
