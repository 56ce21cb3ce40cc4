package esi

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FetchHistory fetches market history for every type id against the shared
// rate budget. conds supplies cached validators keyed by type id; ids with an
// entry send conditional headers and may come back as 304 with a nil payload.
//
// Results are unordered; callers must re-key by TypeID. If any id fails after
// retry policy is exhausted, or the provider signals rate-budget exhaustion,
// the whole batch fails and no partial results are returned.
func (c *Client) FetchHistory(ctx context.Context, regionID int64, typeIDs []int64, conds map[int64]Conditional) ([]Result, error) {
	concurrency := c.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 50
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	results := make([]Result, 0, len(typeIDs))

	c.log.Info("fetching market history",
		zap.Int64("region_id", regionID),
		zap.Int("types", len(typeIDs)))

	for _, typeID := range typeIDs {
		typeID := typeID
		g.Go(func() error {
			url := fmt.Sprintf("%s/markets/%d/history/?datasource=%s&type_id=%d",
				c.cfg.BaseURL, regionID, c.cfg.Datasource, typeID)

			resp, err := c.get(gctx, url, conds[typeID])
			if err != nil {
				return fmt.Errorf("history type %d region %d: %w", typeID, regionID, err)
			}

			result := Result{
				TypeID:       typeID,
				Status:       resp.status,
				ETag:         resp.etag,
				LastModified: resp.lastModified,
			}
			if resp.status == http.StatusOK {
				result.Payload = resp.payload
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Completed results for a failed batch are discarded, never
		// partially applied.
		return nil, err
	}

	fresh := 0
	for _, r := range results {
		if r.Status == http.StatusOK {
			fresh++
		}
	}
	c.log.Info("history fetch complete",
		zap.Int("results", len(results)),
		zap.Int("fresh", fresh),
		zap.Int("not_modified", len(results)-fresh))

	return results, nil
}
