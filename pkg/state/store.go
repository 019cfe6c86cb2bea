// Package state persists report counters and daily send locks.
//
// Each report job owns a counter key (diario_ouro, diario_prata,
// diario_cobre) whose value numbers the published reports, and a daily
// stamp that prevents a second send on the same BRT day. Three backends
// implement the Store interface: a file backend compatible with the
// counters.json and .sent files the report tooling has always written, a
// SQLite backend for deployments that want one database file, and an
// in-memory backend for tests and dry runs.
package state

import (
	"context"
	"fmt"

	"bullion-hq/assay/pkg/config"
)

// Store persists counters and daily send locks.
type Store interface {
	// NextCounter increments the counter for key, persists it, and returns
	// the new value. The first call for a key returns 1.
	NextCounter(ctx context.Context, key string) (int, error)

	// Counter returns the current counter value without incrementing.
	// Unknown keys return 0.
	Counter(ctx context.Context, key string) (int, error)

	// AcquireDaily marks job as sent on day ("YYYY-MM-DD") and reports
	// whether the caller won the lock. A second acquire for the same job
	// and day returns false.
	AcquireDaily(ctx context.Context, job, day string) (bool, error)

	// LastSent returns the day the job last acquired its lock, or "" when
	// it never has.
	LastSent(ctx context.Context, job string) (string, error)

	// Close releases backend resources.
	Close() error
}

// Open builds the Store selected by the configuration.
func Open(cfg config.StateConfig) (Store, error) {
	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg.Dir)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}
