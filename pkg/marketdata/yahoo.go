package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// defaultYahooBaseURL is the public chart API root.
const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// Gold instrument symbols the daily gold report quotes.
const (
	SymbolGoldSpot    = "XAUUSD=X"
	SymbolGoldFutures = "GC=F"
	SymbolGLD         = "GLD"
	SymbolIAU         = "IAU"
)

// chartResponse is the subset of the v8 chart payload the client consumes.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote returns the last close for a Yahoo symbol, rounded to two decimals.
func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	base := strings.TrimRight(c.cfg.YahooBaseURL, "/")
	if base == "" {
		base = defaultYahooBaseURL
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", base, url.PathEscape(symbol))

	var parsed chartResponse
	if err := c.getJSON(ctx, u, &parsed); err != nil {
		c.record("yahoo", false)
		return 0, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}

	price, err := lastClose(&parsed)
	if err != nil {
		c.record("yahoo", false)
		return 0, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}

	c.record("yahoo", true)
	return round2(price), nil
}

// Quotes fetches several symbols, returning whatever succeeded. Failures are
// logged per symbol and left out of the map.
func (c *Client) Quotes(ctx context.Context, symbols []string) map[string]float64 {
	out := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		price, err := c.Quote(ctx, symbol)
		if err != nil {
			c.logger.Warn("quote unavailable", "symbol", symbol, "error", err)
			continue
		}
		out[symbol] = price
	}
	return out
}

// lastClose picks the last non-null close, falling back to the regular
// market price from the chart metadata.
func lastClose(parsed *chartResponse) (float64, error) {
	if parsed.Chart.Error != nil {
		return 0, fmt.Errorf("chart error: %s", parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return 0, fmt.Errorf("chart has no result")
	}

	result := parsed.Chart.Result[0]
	for _, quote := range result.Indicators.Quote {
		for i := len(quote.Close) - 1; i >= 0; i-- {
			if quote.Close[i] != nil {
				return *quote.Close[i], nil
			}
		}
	}
	if result.Meta.RegularMarketPrice != 0 {
		return result.Meta.RegularMarketPrice, nil
	}
	return 0, fmt.Errorf("chart has no close values")
}
