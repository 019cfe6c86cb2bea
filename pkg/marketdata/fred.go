package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// defaultFREDBaseURL is the public FRED API root.
const defaultFREDBaseURL = "https://api.stlouisfed.org"

// dollarIndexSeries is the broad dollar index series the reports cite.
const dollarIndexSeries = "DTWEXBGS"

// Observation is one dated series value.
type Observation struct {
	Date  string
	Value float64
}

// fredResponse is the subset of the observations payload the client consumes.
// FRED sends values as strings, with "." marking missing data.
type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// DollarIndex returns the latest broad dollar index observation for the
// current month. Without an API key the fetch is skipped with an error the
// caller treats as a missing field.
func (c *Client) DollarIndex(ctx context.Context) (*Observation, error) {
	if c.cfg.FREDAPIKey == "" {
		return nil, fmt.Errorf("fred: no API key configured")
	}

	base := strings.TrimRight(c.cfg.FREDBaseURL, "/")
	if base == "" {
		base = defaultFREDBaseURL
	}

	params := url.Values{}
	params.Set("series_id", dollarIndexSeries)
	params.Set("api_key", c.cfg.FREDAPIKey)
	params.Set("file_type", "json")
	params.Set("observation_start", firstOfMonth(time.Now().UTC()))

	var parsed fredResponse
	if err := c.getJSON(ctx, base+"/fred/series/observations?"+params.Encode(), &parsed); err != nil {
		c.record("fred", false)
		return nil, fmt.Errorf("fred %s: %w", dollarIndexSeries, err)
	}

	// The series is daily with trailing placeholder rows; the last numeric
	// observation wins.
	for i := len(parsed.Observations) - 1; i >= 0; i-- {
		obs := parsed.Observations[i]
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		c.record("fred", true)
		return &Observation{Date: obs.Date, Value: value}, nil
	}

	c.record("fred", false)
	return nil, fmt.Errorf("fred %s: no numeric observations this month", dollarIndexSeries)
}

// firstOfMonth renders the observation_start the original reports pin.
func firstOfMonth(now time.Time) string {
	return fmt.Sprintf("%04d-%02d-01", now.Year(), int(now.Month()))
}
