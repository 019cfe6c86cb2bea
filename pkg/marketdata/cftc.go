package marketdata

import (
	"context"
	"errors"
)

// ErrCOTUnavailable marks the commitment-of-traders fetch as having no free
// API source. Snapshots record the absence and the prompt says so.
var ErrCOTUnavailable = errors.New("cftc commitment-of-traders: no free API source")

// CommitmentOfTraders always returns ErrCOTUnavailable. The method exists
// so the snapshot records the absence explicitly rather than by omission,
// and so a future data source slots in without touching callers.
func (c *Client) CommitmentOfTraders(ctx context.Context, metal string) error {
	return ErrCOTUnavailable
}
