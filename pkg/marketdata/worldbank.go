package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// defaultWorldBankBaseURL is the public World Bank API root.
const defaultWorldBankBaseURL = "https://api.worldbank.org"

// World Bank indicator codes for the world aggregate.
const (
	indicatorTotalReserves = "FI.RES.TOTL.CD"
	indicatorGoldReserves  = "FI.RES.XGLD.CD"
)

// Reserves holds the world reserve aggregates, each best-effort.
type Reserves struct {
	// Total is total reserves in current US dollars.
	Total *Observation

	// Gold is gold reserves in current US dollars; the series is spotty,
	// nil means unavailable.
	Gold *Observation
}

// WorldReserves fetches the world aggregate reserves. The total series
// failing fails the fetch; the gold series is best-effort on top.
func (c *Client) WorldReserves(ctx context.Context) (*Reserves, error) {
	total, err := c.indicator(ctx, indicatorTotalReserves)
	if err != nil {
		c.record("worldbank", false)
		return nil, fmt.Errorf("world bank reserves: %w", err)
	}

	reserves := &Reserves{Total: total}
	if gold, err := c.indicator(ctx, indicatorGoldReserves); err == nil {
		reserves.Gold = gold
	} else {
		c.logger.Debug("gold reserve series unavailable", "error", err)
	}

	c.record("worldbank", true)
	return reserves, nil
}

// indicator fetches one WLD indicator and returns the first row carrying a
// value. The API responds with a two-element array: metadata, then rows.
func (c *Client) indicator(ctx context.Context, code string) (*Observation, error) {
	base := strings.TrimRight(c.cfg.WorldBankBaseURL, "/")
	if base == "" {
		base = defaultWorldBankBaseURL
	}
	u := fmt.Sprintf("%s/v2/country/WLD/indicator/%s?format=json&per_page=2", base, code)

	var parsed []json.RawMessage
	if err := c.getJSON(ctx, u, &parsed); err != nil {
		return nil, fmt.Errorf("indicator %s: %w", code, err)
	}
	if len(parsed) < 2 {
		return nil, fmt.Errorf("indicator %s: response has no data rows", code)
	}

	var rows []struct {
		Date  string   `json:"date"`
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(parsed[1], &rows); err != nil {
		return nil, fmt.Errorf("indicator %s: decoding rows: %w", code, err)
	}

	for _, row := range rows {
		if row.Value != nil {
			return &Observation{Date: row.Date, Value: *row.Value}, nil
		}
	}
	return nil, fmt.Errorf("indicator %s: no rows with values", code)
}
