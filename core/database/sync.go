package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	xerrors "market-sync/core/errors"

	libsql "github.com/tursodatabase/go-libsql"
	"go.uber.org/zap"
)

// Progress is the replication bookkeeping snapshot read from the metadata
// sidecar. The counters are opaque to us; they are compared before and after
// a sync purely to log drift, never to gate correctness.
type Progress struct {
	Generation      int64 `json:"generation"`
	DurableFrameNum int64 `json:"durable_frame_num"`
}

// readProgress parses the sidecar next to the database file. Returns nil
// when the sidecar does not exist (fresh database).
func readProgress(cfg Config) (*Progress, error) {
	raw, err := os.ReadFile(cfg.metadataPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync metadata %s: %w", cfg.metadataPath(), err)
	}
	var p Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to parse sync metadata %s: %w", cfg.metadataPath(), err)
	}
	return &p, nil
}

// Sync pulls outstanding changes from the remote replica into the local
// file, logging generation and frame drift around the pull.
func (h *Handles) Sync(ctx context.Context) error {
	if h.connector == nil {
		return fmt.Errorf("sync requested for %s but no replica is configured", h.cfg.Path)
	}

	before, err := readProgress(h.cfg)
	if err != nil {
		return err
	}
	if before != nil {
		h.log.Info("starting sync",
			zap.String("path", h.cfg.Path),
			zap.Int64("generation", before.Generation),
			zap.Int64("durable_frame_num", before.DurableFrameNum))
	} else {
		h.log.Info("starting fresh database sync", zap.String("path", h.cfg.Path))
	}

	start := time.Now()
	if _, err := h.connector.Sync(); err != nil {
		return fmt.Errorf("sync failed for %s: %w", h.cfg.Path, err)
	}
	elapsed := time.Since(start)

	after, err := readProgress(h.cfg)
	if err != nil {
		return err
	}
	switch {
	case before != nil && after != nil:
		h.log.Info("sync complete",
			zap.Duration("elapsed", elapsed),
			zap.Int64("generation_change", after.Generation-before.Generation),
			zap.Int64("frames_synced", after.DurableFrameNum-before.DurableFrameNum))
	case after != nil:
		h.log.Info("fresh sync complete",
			zap.Duration("elapsed", elapsed),
			zap.Int64("generation", after.Generation),
			zap.Int64("durable_frame_num", after.DurableFrameNum))
	default:
		h.log.Info("sync complete", zap.Duration("elapsed", elapsed))
	}
	return nil
}

// Validate compares the watermark column between the local file and the
// remote replica. Equal maxima mean the local copy is up to date.
func (h *Handles) Validate(ctx context.Context) (bool, error) {
	if h.remote == nil {
		return false, fmt.Errorf("validate requested for %s but no replica is configured", h.cfg.Path)
	}

	query := fmt.Sprintf("SELECT MAX(%s) FROM %s", h.cfg.WatermarkColumn, h.cfg.StatsTable)

	var local, remote sql.NullString
	if err := h.DB.WithContext(ctx).Raw(query).Scan(&local).Error; err != nil {
		return false, fmt.Errorf("local watermark query on %s: %w", h.cfg.StatsTable, err)
	}
	if err := h.remote.QueryRowContext(ctx, query).Scan(&remote); err != nil {
		return false, fmt.Errorf("remote watermark query on %s: %w", h.cfg.StatsTable, err)
	}

	localVal, remoteVal := local.String, remote.String
	upToDate := localVal == remoteVal
	h.log.Info("validated sync state",
		zap.String("table", h.cfg.StatsTable),
		zap.String("local_watermark", localVal),
		zap.String("remote_watermark", remoteVal),
		zap.Bool("up_to_date", upToDate))
	return upToDate, nil
}

// EnsureFresh validates the local copy, re-syncing once on mismatch. A
// mismatch that survives the sync attempt surfaces StaleStateError so
// dependent computation can halt.
func (h *Handles) EnsureFresh(ctx context.Context) error {
	upToDate, err := h.Validate(ctx)
	if err != nil {
		return err
	}
	if upToDate {
		return nil
	}

	h.log.Warn("local database stale, re-syncing", zap.String("path", h.cfg.Path))
	if err := h.Sync(ctx); err != nil {
		return err
	}

	upToDate, err = h.Validate(ctx)
	if err != nil {
		return err
	}
	if !upToDate {
		return &xerrors.StaleStateError{Table: h.cfg.StatsTable}
	}
	return nil
}

// NeedsInit reports whether the database needs bootstrap: the file and its
// metadata sidecar must exist together. Pure check, mutates nothing.
func NeedsInit(cfg Config) bool {
	return !(exists(cfg.Path) && exists(cfg.metadataPath()))
}

// VerifyAndRepair brings the file/sidecar pair into a consistent state and
// bootstraps via sync when required. Four states are handled:
//
//  1. neither exists: sync to initialize both
//  2. both exist: nothing to do
//  3. file without sidecar: delete the file, then sync
//  4. sidecar without file: delete the sidecar, then sync
//
// Syncing over a file that lacks its sidecar corrupts the replication
// bookkeeping, so the mismatched half is always removed first.
func VerifyAndRepair(cfg Config, log *zap.Logger) error {
	needsSync, err := repairState(cfg, log)
	if err != nil {
		return err
	}
	if !needsSync {
		log.Info("database state verified", zap.String("path", cfg.Path))
		return nil
	}

	log.Info("initializing database via sync", zap.String("path", cfg.Path))
	if err := bootstrapSync(cfg); err != nil {
		return err
	}
	if NeedsInit(cfg) {
		return fmt.Errorf("sync did not produce a consistent database state for %s", cfg.Path)
	}
	log.Info("database initialized", zap.String("path", cfg.Path))
	return nil
}

// repairState deletes whichever half of the file/sidecar pair is orphaned
// and reports whether a bootstrap sync is still required.
func repairState(cfg Config, log *zap.Logger) (bool, error) {
	dbExists := exists(cfg.Path)
	metaExists := exists(cfg.metadataPath())

	switch {
	case dbExists && metaExists:
		return false, nil

	case dbExists && !metaExists:
		// Never sync over a bare database file.
		log.Warn("database exists without sync metadata, removing", zap.String("path", cfg.Path))
		if err := os.Remove(cfg.Path); err != nil {
			return false, fmt.Errorf("failed to remove orphaned database %s: %w", cfg.Path, err)
		}

	case !dbExists && metaExists:
		log.Warn("orphaned sync metadata found, removing", zap.String("path", cfg.metadataPath()))
		if err := os.Remove(cfg.metadataPath()); err != nil {
			return false, fmt.Errorf("failed to remove orphaned metadata %s: %w", cfg.metadataPath(), err)
		}
	}
	return true, nil
}

// bootstrapSync pulls a fresh local copy through a short-lived connector.
func bootstrapSync(cfg Config) error {
	if cfg.ReplicaURL == "" {
		return fmt.Errorf("database %s needs initialization but no replica is configured", cfg.Path)
	}
	connector, err := libsql.NewEmbeddedReplicaConnector(cfg.Path, cfg.ReplicaURL,
		libsql.WithAuthToken(cfg.AuthToken))
	if err != nil {
		return fmt.Errorf("failed to open embedded replica %s: %w", cfg.Path, err)
	}
	defer connector.Close()

	if _, err := connector.Sync(); err != nil {
		return fmt.Errorf("bootstrap sync failed for %s: %w", cfg.Path, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
