package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// FetchOrders fetches the full order listing for a region, following
// pagination sequentially. orderType is one of "sell", "buy", or "all".
//
// The provider signals total page count on the first response; MaxPages caps
// the depth in constrained mode. Each order is returned as raw JSON for the
// caller to reshape.
func (c *Client) FetchOrders(ctx context.Context, regionID int64, orderType string) ([]json.RawMessage, error) {
	var orders []json.RawMessage

	page := 1
	maxPages := 1
	for page <= maxPages {
		url := fmt.Sprintf("%s/markets/%d/orders/?datasource=%s&order_type=%s&page=%d",
			c.cfg.BaseURL, regionID, c.cfg.Datasource, orderType, page)

		resp, err := c.get(ctx, url, Conditional{})
		if err != nil {
			return nil, fmt.Errorf("orders region %d page %d: %w", regionID, page, err)
		}
		if resp.status != http.StatusOK {
			return nil, fmt.Errorf("orders region %d page %d: unexpected status %d", regionID, page, resp.status)
		}

		if page == 1 {
			maxPages = resp.pages
			if c.cfg.MaxPages > 0 && maxPages > c.cfg.MaxPages {
				c.log.Info("capping order pagination",
					zap.Int("reported_pages", maxPages),
					zap.Int("max_pages", c.cfg.MaxPages))
				maxPages = c.cfg.MaxPages
			}
		}

		var pageOrders []json.RawMessage
		if err := json.Unmarshal(resp.payload, &pageOrders); err != nil {
			return nil, fmt.Errorf("orders region %d page %d: decode: %w", regionID, page, err)
		}
		if len(pageOrders) == 0 {
			c.log.Info("no more orders found", zap.Int("page", page))
			break
		}

		orders = append(orders, pageOrders...)
		c.log.Debug("fetched order page",
			zap.Int("page", page),
			zap.Int("of", maxPages),
			zap.Int("orders", len(pageOrders)))
		page++
	}

	c.log.Info("orders fetch complete",
		zap.Int64("region_id", regionID),
		zap.Int("orders", len(orders)),
		zap.Int("pages", page-1))

	return orders, nil
}
