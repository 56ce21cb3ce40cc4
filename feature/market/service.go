package market

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"market-sync/core/database"
	"market-sync/core/esi"
	"market-sync/core/etagcache"
	"market-sync/core/logger"
	"market-sync/core/upsert"

	"go.uber.org/zap"
)

// Service orchestrates one update cycle: fetch from the provider, reconcile
// the market tables, refresh the conditional cache, then sync and validate
// the replica pair. One Service runs one cycle at a time; reconciliation
// calls per table are never concurrent.
type Service struct {
	store  *database.Handles
	client *esi.Client
	cache  *etagcache.Store
	log    *zap.Logger

	region      int64
	syncEnabled bool
}

// NewService wires the pipeline. syncEnabled should be false when no remote
// replica is configured.
func NewService(store *database.Handles, client *esi.Client, cache *etagcache.Store, region int64, syncEnabled bool, log *zap.Logger) *Service {
	return &Service{
		store:       store,
		client:      client,
		cache:       cache,
		log:         log,
		region:      region,
		syncEnabled: syncEnabled,
	}
}

// RunCycle executes one full ingestion-and-reconciliation cycle.
// A failed fetch or reconciliation for a required table aborts the cycle;
// nothing downstream of the failure runs.
func (s *Service) RunCycle(ctx context.Context) error {
	log := logger.WithRunID(s.log)
	start := time.Now()
	log.Info("starting update cycle", zap.Int64("region_id", s.region))

	ids, err := Watchlist(ctx, s.store.DB)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("watchlist is empty, nothing to update")
	}
	log.Info("loaded watchlist", zap.Int("types", len(ids)))

	if err := s.updateOrders(ctx, log); err != nil {
		return err
	}
	if err := s.updateHistory(ctx, log, ids); err != nil {
		return err
	}

	if s.syncEnabled {
		if err := s.store.Sync(ctx); err != nil {
			return err
		}
		if err := s.store.EnsureFresh(ctx); err != nil {
			return err
		}
	}

	log.Info("update cycle complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// updateOrders pulls the full regional order snapshot and reconciles the
// marketorders table against it.
func (s *Service) updateOrders(ctx context.Context, log *zap.Logger) error {
	raw, err := s.client.FetchOrders(ctx, s.region, "all")
	if err != nil {
		return err
	}

	rows, err := OrderRows(raw)
	if err != nil {
		return err
	}

	spec := OrdersSpec()
	stats, err := upsert.Upsert(ctx, s.store.DB, log, spec, rows)
	if err != nil {
		return err
	}
	if err := recordUpdate(ctx, s.store.DB, spec.Name, stats); err != nil {
		log.Warn("failed to record update log", zap.String("table", spec.Name), zap.Error(err))
	}
	return nil
}

// updateHistory conditionally fetches per-type history and upserts whatever
// came back fresh. Cache entries are written only after the upsert commits,
// so a failed write never leaves validators claiming data we do not hold.
func (s *Service) updateHistory(ctx context.Context, log *zap.Logger, ids []int64) error {
	conds, err := s.cache.Conditionals(s.region, ids)
	if err != nil {
		return err
	}

	results, err := s.client.FetchHistory(ctx, s.region, ids, conds)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var rows []upsert.Row
	for _, r := range results {
		if r.Status != http.StatusOK {
			continue
		}
		typeRows, err := HistoryRows(r.TypeID, r.Payload, now)
		if err != nil {
			return err
		}
		rows = append(rows, typeRows...)
	}

	if len(rows) == 0 {
		log.Info("history unchanged, nothing to upsert")
		return nil
	}

	spec := HistorySpec()
	stats, err := upsert.Upsert(ctx, s.store.DB, log, spec, rows)
	if err != nil {
		return err
	}
	if err := recordUpdate(ctx, s.store.DB, spec.Name, stats); err != nil {
		log.Warn("failed to record update log", zap.String("table", spec.Name), zap.Error(err))
	}

	return s.cache.Write(s.region, results)
}

// UpsertStats reconciles the marketstats table with rows assembled by the
// reporting layer. Exposed so stats generation stays outside the core while
// still flowing through the same engine and watermark discipline.
func (s *Service) UpsertStats(ctx context.Context, rows []upsert.Row) (upsert.Stats, error) {
	spec := StatsSpec()
	stats, err := upsert.Upsert(ctx, s.store.DB, s.log, spec, rows)
	if err != nil {
		return stats, err
	}
	if err := recordUpdate(ctx, s.store.DB, spec.Name, stats); err != nil {
		s.log.Warn("failed to record update log", zap.String("table", spec.Name), zap.Error(err))
	}
	return stats, nil
}
