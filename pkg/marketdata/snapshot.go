package marketdata

import (
	"context"
	"errors"
)

// SnapshotRequest names the facts one report wants.
type SnapshotRequest struct {
	// Symbols are the Yahoo symbols to quote.
	Symbols []string

	// SpotSymbol is the symbol treated as the spot quote; when Yahoo fails
	// it, the goldapi fallback fills in under the same symbol.
	SpotSymbol string

	// MetalCode is the goldapi metal code (XAU, XAG) for the spot fallback;
	// empty disables it.
	MetalCode string

	// Reserves requests the World Bank world aggregates.
	Reserves bool
}

// Snapshot is the factual context gathered for one report. Missing fields
// mean the source was unavailable; the prompt builder states that.
type Snapshot struct {
	// Quotes maps Yahoo symbols to last closes.
	Quotes map[string]float64

	// DollarIndex is the latest broad dollar index observation.
	DollarIndex *Observation

	// Reserves holds the World Bank aggregates when requested.
	Reserves *Reserves

	// COTUnavailable is set when the commitment-of-traders source has no
	// data, which today is always.
	COTUnavailable bool
}

// Empty reports whether the snapshot carries no live facts at all.
func (s *Snapshot) Empty() bool {
	return len(s.Quotes) == 0 && s.DollarIndex == nil && s.Reserves == nil
}

// Snapshot gathers the requested facts. Every source is best-effort; the
// result is never nil and a fully failed gather returns an Empty snapshot.
func (c *Client) Snapshot(ctx context.Context, req SnapshotRequest) *Snapshot {
	snap := &Snapshot{
		Quotes: c.Quotes(ctx, req.Symbols),
	}

	if req.SpotSymbol != "" && req.MetalCode != "" {
		if _, ok := snap.Quotes[req.SpotSymbol]; !ok {
			if price, err := c.SpotFallback(ctx, req.MetalCode); err == nil {
				snap.Quotes[req.SpotSymbol] = price
			} else {
				c.logger.Debug("spot fallback unavailable", "metal", req.MetalCode, "error", err)
			}
		}
	}

	if dxy, err := c.DollarIndex(ctx); err == nil {
		snap.DollarIndex = dxy
	} else {
		c.logger.Warn("dollar index unavailable", "error", err)
	}

	if req.Reserves {
		if reserves, err := c.WorldReserves(ctx); err == nil {
			snap.Reserves = reserves
		} else {
			c.logger.Warn("world reserves unavailable", "error", err)
		}
	}

	if err := c.CommitmentOfTraders(ctx, req.MetalCode); errors.Is(err, ErrCOTUnavailable) {
		snap.COTUnavailable = true
	}

	return snap
}
