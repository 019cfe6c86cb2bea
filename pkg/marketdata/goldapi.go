package marketdata

import (
	"context"
	"fmt"
	"strings"
)

// defaultGoldAPIBaseURL is the goldapi.io root.
const defaultGoldAPIBaseURL = "https://www.goldapi.io"

// goldAPIResponse is the subset of the goldapi.io payload the client
// consumes.
type goldAPIResponse struct {
	Price float64 `json:"price"`
}

// SpotFallback returns the spot price for a metal code (XAU, XAG) from
// goldapi.io. It exists as a fallback when Yahoo's spot symbol is
// unavailable and needs a GOLDAPI_KEY to work.
func (c *Client) SpotFallback(ctx context.Context, metal string) (float64, error) {
	if c.cfg.GoldAPIKey == "" {
		return 0, fmt.Errorf("goldapi: no API key configured")
	}

	base := strings.TrimRight(c.cfg.GoldAPIBaseURL, "/")
	if base == "" {
		base = defaultGoldAPIBaseURL
	}

	// goldapi wants the key in a header, not the query.
	u := fmt.Sprintf("%s/api/%s/USD", base, metal)
	var parsed goldAPIResponse
	if err := c.getJSONWithHeader(ctx, u, "x-access-token", c.cfg.GoldAPIKey, &parsed); err != nil {
		c.record("goldapi", false)
		return 0, fmt.Errorf("goldapi %s: %w", metal, err)
	}
	if parsed.Price <= 0 {
		c.record("goldapi", false)
		return 0, fmt.Errorf("goldapi %s: no price in response", metal)
	}

	c.record("goldapi", true)
	return round2(parsed.Price), nil
}
