package etagcache

import (
	"errors"
	"fmt"
	"time"

	"market-sync/core/esi"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Entry is one cached conditional-request validator pair, keyed by the
// composite resource key (type id, region id). Entries are only ever
// overwritten, never individually deleted; staleness is provider-defined
// via conditional semantics, so there is no TTL.
type Entry struct {
	TypeID       int64     `gorm:"column:type_id;primaryKey"`
	RegionID     int64     `gorm:"column:region_id;primaryKey"`
	ETag         string    `gorm:"column:etag"`
	LastModified string    `gorm:"column:last_modified"`
	LastChecked  time.Time `gorm:"column:last_checked"`
}

// TableName implements the gorm table name override.
func (Entry) TableName() string { return "esi_request_cache" }

// Store persists conditional validators in a standalone local sqlite file.
// The file is deliberately separate from the replica-synced market database:
// a cloud-to-local pull must never wipe locally accumulated validators.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open creates or opens the cache database at path.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Read returns the cached entry for one resource key, or nil when absent.
func (s *Store) Read(typeID, regionID int64) (*Entry, error) {
	var entry Entry
	err := s.db.Where("type_id = ? AND region_id = ?", typeID, regionID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache for type %d region %d: %w", typeID, regionID, err)
	}
	return &entry, nil
}

// Conditionals bulk-loads the validators for a region, keyed by type id.
// It implements the lookup the fetcher consumes at the start of a cycle.
func (s *Store) Conditionals(regionID int64, typeIDs []int64) (map[int64]esi.Conditional, error) {
	var entries []Entry
	if err := s.db.Where("region_id = ? AND type_id IN ?", regionID, typeIDs).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load cache for region %d: %w", regionID, err)
	}

	conds := make(map[int64]esi.Conditional, len(entries))
	for _, e := range entries {
		conds[e.TypeID] = esi.Conditional{ETag: e.ETag, LastModified: e.LastModified}
	}
	return conds, nil
}

// Write stores fresh validators from a fetch cycle. Results carrying neither
// an etag nor a last-modified value are skipped (nothing to cache), and 304
// results never touch the stored entry: it is refreshed only from a
// subsequent 200.
func (s *Store) Write(regionID int64, results []esi.Result) error {
	now := time.Now().UTC()

	written := 0
	for _, r := range results {
		if r.Status != 200 {
			continue
		}
		if r.ETag == "" && r.LastModified == "" {
			continue
		}
		entry := Entry{
			TypeID:       r.TypeID,
			RegionID:     regionID,
			ETag:         r.ETag,
			LastModified: r.LastModified,
			LastChecked:  now,
		}
		if err := s.db.Save(&entry).Error; err != nil {
			return fmt.Errorf("failed to write cache for type %d region %d: %w", r.TypeID, regionID, err)
		}
		written++
	}

	s.log.Debug("cache entries written",
		zap.Int64("region_id", regionID),
		zap.Int("written", written),
		zap.Int("skipped", len(results)-written))
	return nil
}
