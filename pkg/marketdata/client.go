// Package marketdata fetches the factual context lines for the daily
// reports: Yahoo Finance last closes, the FRED broad dollar index, World
// Bank reserve aggregates, and a goldapi.io spot fallback.
//
// Every fetcher is best-effort. Failures are logged and surface as missing
// snapshot fields, never as a failed report run; the prompt builder states
// what is unavailable. GETs retry with exponential backoff, unlike the LLM
// adapter whose single-attempt contract belongs to the failover chain.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"bullion-hq/assay/pkg/config"
)

const (
	// userAgent identifies the fetchers to the public APIs.
	userAgent = "assay/1.0 (+https://github.com/bullion-hq/assay)"

	// DefaultTimeout bounds one fetch attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is how many extra attempts a failed GET is given.
	DefaultRetries = 2

	// backoffBase is the first retry delay; each retry doubles it, capped
	// at backoffMax.
	backoffBase = 1 * time.Second
	backoffMax  = 10 * time.Second
)

// Recorder counts fetch outcomes. ReportMetrics satisfies it; a nil
// Recorder disables counting.
type Recorder interface {
	RecordFetch(source string, ok bool)
}

// Client runs the fetchers against the configured or default endpoints.
type Client struct {
	cfg      config.MarketDataConfig
	http     *http.Client
	logger   *slog.Logger
	recorder Recorder
}

// Options configures a Client beyond the config section.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Recorder counts fetch outcomes; nil disables counting.
	Recorder Recorder
}

// New creates a client from the market data configuration.
func New(cfg config.MarketDataConfig, opts Options) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = DefaultRetries
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger.With("component", "marketdata"),
		recorder: opts.Recorder,
	}
}

// getJSON performs a GET with retries and decodes the response into out.
// Non-2xx statuses count as failures and are retried like transport errors.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	return c.getJSONHeaders(ctx, url, nil, out)
}

// getJSONWithHeader is getJSON with one extra request header, for APIs that
// take their credential out of the query string.
func (c *Client) getJSONWithHeader(ctx context.Context, url, header, value string, out any) error {
	return c.getJSONHeaders(ctx, url, map[string]string{header: value}, out)
}

func (c *Client) getJSONHeaders(ctx context.Context, url string, headers map[string]string, out any) error {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			delay := backoffBase << (attempt - 1)
			if delay > backoffMax {
				delay = backoffMax
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = c.getJSONOnce(ctx, url, headers, out)
		if lastErr == nil {
			return nil
		}
		c.logger.Debug("fetch attempt failed",
			"url", url,
			"attempt", attempt+1,
			"error", lastErr,
		)
	}

	return lastErr
}

func (c *Client) getJSONOnce(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// record reports a fetch outcome to the recorder when one is attached.
func (c *Client) record(source string, ok bool) {
	if c.recorder != nil {
		c.recorder.RecordFetch(source, ok)
	}
}

// round2 rounds to two decimals, matching the figures the reports print.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
