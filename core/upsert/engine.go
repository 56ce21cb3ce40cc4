package upsert

import (
	"context"
	"fmt"

	xerrors "market-sync/core/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Upsert reconciles one table with an incoming row batch according to its
// spec. Exactly one database transaction is taken per call; any store error
// aborts it wholesale, so the table never holds a partial write. Callers must
// serialize Upsert calls per table.
//
// The returned Stats are approximate for the inserted/updated split (driver
// rows-affected); final row membership is the guaranteed property, enforced
// by a post-write count check that surfaces IntegrityError on mismatch.
func Upsert(ctx context.Context, db *gorm.DB, log *zap.Logger, spec TableSpec, rows []Row) (Stats, error) {
	if err := spec.Validate(); err != nil {
		return Stats{}, err
	}
	if len(rows) == 0 {
		return Stats{}, fmt.Errorf("table %s: no rows to upsert", spec.Name)
	}

	sanitize(log, spec, rows)

	incoming := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		incoming[keyOf(spec, row)] = struct{}{}
	}
	distinctIncoming := int64(len(incoming))

	log.Info("upserting table",
		zap.String("table", spec.Name),
		zap.String("mode", string(spec.Mode)),
		zap.Int("rows", len(rows)),
		zap.Int64("distinct_keys", distinctIncoming))

	if spec.Mode == ModeWipeReplace {
		return wipeReplace(ctx, db, log, spec, rows)
	}
	return incremental(ctx, db, log, spec, rows, incoming, distinctIncoming)
}

// wipeReplace truncates the table and reloads it inside one transaction.
// The count assertion runs inside the transaction: a mismatch rolls the
// whole operation back, so a partial wipe is never visible.
func wipeReplace(ctx context.Context, db *gorm.DB, log *zap.Logger, spec TableSpec, rows []Row) (Stats, error) {
	var stats Stats

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(deleteAllSQL(spec))
		if res.Error != nil {
			return fmt.Errorf("table %s: wipe: %w", spec.Name, res.Error)
		}
		stats.Deleted = res.RowsAffected

		for start := 0; start < len(rows); start += insertChunkSize {
			chunk := rows[start:min(start+insertChunkSize, len(rows))]
			res := tx.Exec(insertSQL(spec, len(chunk)), rowArgs(spec, chunk)...)
			if res.Error != nil {
				return fmt.Errorf("table %s: insert chunk at %d: %w", spec.Name, start, res.Error)
			}
			stats.Inserted += res.RowsAffected
		}

		var count int64
		if err := tx.Raw(countSQL(spec)).Scan(&count).Error; err != nil {
			return fmt.Errorf("table %s: count: %w", spec.Name, err)
		}
		if count != int64(len(rows)) {
			return &xerrors.IntegrityError{Table: spec.Name, Expected: int64(len(rows)), Got: count}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	log.Info("wipe-replace complete",
		zap.String("table", spec.Name),
		zap.Int64("deleted", stats.Deleted),
		zap.Int64("inserted", stats.Inserted))
	return stats, nil
}

// incremental key-diffs the table against the batch: stale keys deleted in
// sub-chunks, rows upserted in chunks with change detection. ModeAppend
// skips the stale pruning. The membership assertion runs after commit; a
// mismatch surfaces IntegrityError but the committed write stands.
func incremental(ctx context.Context, db *gorm.DB, log *zap.Logger, spec TableSpec, rows []Row, incoming map[string]struct{}, distinctIncoming int64) (Stats, error) {
	var stats Stats
	var existingCount int64
	var affected int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := readKeys(tx, spec)
		if err != nil {
			return err
		}
		existingCount = int64(len(existing))

		if spec.Mode == ModeIncremental {
			var stale [][]any
			for key, values := range existing {
				if _, present := incoming[key]; !present {
					stale = append(stale, values)
				}
			}

			for start := 0; start < len(stale); start += deleteChunkSize {
				chunk := stale[start:min(start+deleteChunkSize, len(stale))]
				res := tx.Exec(deleteKeysSQL(spec, len(chunk)), keyArgs(chunk)...)
				if res.Error != nil {
					return fmt.Errorf("table %s: delete stale chunk at %d: %w", spec.Name, start, res.Error)
				}
				stats.Deleted += res.RowsAffected
			}
			if stats.Deleted > 0 {
				log.Info("deleted stale rows",
					zap.String("table", spec.Name),
					zap.Int64("deleted", stats.Deleted))
			}
		}

		for start := 0; start < len(rows); start += insertChunkSize {
			chunk := rows[start:min(start+insertChunkSize, len(rows))]
			res := tx.Exec(upsertSQL(spec, len(chunk)), rowArgs(spec, chunk)...)
			if res.Error != nil {
				return fmt.Errorf("table %s: upsert chunk at %d: %w", spec.Name, start, res.Error)
			}
			affected += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	var count int64
	if err := db.WithContext(ctx).Raw(countSQL(spec)).Scan(&count).Error; err != nil {
		return stats, fmt.Errorf("table %s: post-write count: %w", spec.Name, err)
	}

	// Approximate the insert/update split from rows affected. Rows whose
	// change columns all matched were skipped by the conflict clause and
	// do not count as affected.
	stats.Inserted = max(count-(existingCount-stats.Deleted), 0)
	stats.Updated = max(affected-stats.Inserted, 0)
	stats.Skipped = max(int64(len(rows))-affected, 0)

	log.Info("upsert summary",
		zap.String("table", spec.Name),
		zap.Int64("deleted", stats.Deleted),
		zap.Int64("inserted", stats.Inserted),
		zap.Int64("updated", stats.Updated),
		zap.Int64("skipped", stats.Skipped))

	if count < distinctIncoming {
		return stats, &xerrors.IntegrityError{Table: spec.Name, Expected: distinctIncoming, Got: count}
	}
	return stats, nil
}

// readKeys loads the table's primary keys, mapped from canonical form to the
// raw tuple used for parameterized deletes.
func readKeys(tx *gorm.DB, spec TableSpec) (map[string][]any, error) {
	sqlRows, err := tx.Raw(selectKeysSQL(spec)).Rows()
	if err != nil {
		return nil, fmt.Errorf("table %s: read keys: %w", spec.Name, err)
	}
	defer sqlRows.Close()

	width := len(spec.PrimaryKey)
	existing := make(map[string][]any)
	for sqlRows.Next() {
		values := make([]any, width)
		ptrs := make([]any, width)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := sqlRows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("table %s: scan keys: %w", spec.Name, err)
		}
		existing[keyOfValues(spec, values)] = values
	}
	if err := sqlRows.Err(); err != nil {
		return nil, fmt.Errorf("table %s: iterate keys: %w", spec.Name, err)
	}
	return existing, nil
}
