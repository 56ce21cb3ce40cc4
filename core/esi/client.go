package esi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	xerrors "market-sync/core/errors"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Response headers the provider uses to signal pagination and error budget.
const (
	headerPages            = "X-Pages"
	headerErrorLimitRemain = "X-ESI-Error-Limit-Remain"
	headerRetryAfter       = "Retry-After"
)

// TokenProvider supplies bearer tokens for authenticated endpoints.
// Credential issuance and refresh live outside this package; the fetcher
// consumes tokens opaquely.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider returning a fixed token.
type StaticToken string

// Token implements TokenProvider.
func (t StaticToken) Token(_ context.Context) (string, error) {
	return string(t), nil
}

// Conditional carries the cached validators attached to an outgoing request.
// Either field may be empty.
type Conditional struct {
	ETag         string
	LastModified string
}

// Result is the outcome of one logical fetch. Status 200 carries a payload
// and fresh validators; status 304 carries a nil payload and leaves the
// cached entry authoritative.
type Result struct {
	TypeID       int64
	Status       int
	Payload      []byte
	ETag         string
	LastModified string
}

// Client issues requests against a shared rate budget with bounded
// concurrency, conditional-request caching, and retry with backoff.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	tokens  TokenProvider
	log     *zap.Logger
}

// NewClient creates a fetch client. tokens may be nil for public endpoints.
func NewClient(cfg Config, tokens TokenProvider, log *zap.Logger) *Client {
	requests := cfg.RateRequests
	if requests <= 0 {
		requests = 300
	}
	// Space departures evenly across the window so that no sliding window
	// ever sees more than the configured request budget.
	interval := cfg.rateWindow() / time.Duration(requests)

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.timeout()},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		tokens:  tokens,
		log:     log,
	}
}

// response is the decoded outcome of one HTTP exchange.
type response struct {
	status       int
	payload      []byte
	etag         string
	lastModified string
	pages        int
}

// get performs a single logical GET with retry. Transient conditions (5xx,
// timeouts, connection errors, 429) are retried with exponential backoff up
// to the configured elapsed limit; 4xx other than 429 surface immediately.
func (c *Client) get(ctx context.Context, url string, cond Conditional) (*response, error) {
	var out *response

	operation := func() error {
		r, err := c.roundTrip(ctx, url, cond)
		if err != nil {
			return err
		}
		out = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.cfg.maxElapsed()

	notify := func(err error, wait time.Duration) {
		c.log.Warn("retrying request",
			zap.String("url", url),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, err
	}
	return out, nil
}

// roundTrip performs one HTTP exchange and classifies the outcome by the
// error taxonomy. Returned transient errors are retried by get; permanent
// errors are wrapped so backoff stops immediately.
func (c *Client) roundTrip(ctx context.Context, url string, cond Conditional) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("token provider: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if cond.ETag != "" {
		req.Header.Set("If-None-Match", cond.ETag)
	}
	if cond.LastModified != "" {
		req.Header.Set("If-Modified-Since", cond.LastModified)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and connection failures are transient.
		return nil, &xerrors.TransientError{Err: err}
	}
	defer resp.Body.Close()

	// The provider's error allowance is a hard-stop signal, checked on every
	// response regardless of status. Exhaustion fails the whole batch.
	if resp.Header.Get(headerErrorLimitRemain) == "0" {
		return nil, backoff.Permanent(xerrors.ErrRateBudgetExhausted)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &xerrors.TransientError{Err: err}
		}
		pages := 1
		if p, err := strconv.Atoi(resp.Header.Get(headerPages)); err == nil && p > 0 {
			pages = p
		}
		return &response{
			status:       http.StatusOK,
			payload:      body,
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			pages:        pages,
		}, nil

	case resp.StatusCode == http.StatusNotModified:
		return &response{status: http.StatusNotModified}, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		// Honor Retry-After when present, then let backoff schedule the retry.
		if ra, err := strconv.Atoi(resp.Header.Get(headerRetryAfter)); err == nil && ra > 0 {
			if err := sleep(ctx, time.Duration(ra)*time.Second); err != nil {
				return nil, backoff.Permanent(err)
			}
		}
		return nil, &xerrors.TransientError{Status: resp.StatusCode}

	case resp.StatusCode >= 500:
		return nil, &xerrors.TransientError{Status: resp.StatusCode}

	default:
		return nil, backoff.Permanent(&xerrors.PermanentError{
			Status:   resp.StatusCode,
			Resource: url,
		})
	}
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
