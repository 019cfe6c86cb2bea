// Package ledger records the outcome of every report run.
//
// Each run produces one Record: which job ran, what number and title the
// report carried, which provider finally answered, how many attempts the
// failover chain spent, and how the run ended. The ledger backs the
// `assay ledger` subcommands and the retention pruner; generation itself
// never depends on it.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bullion-hq/assay/pkg/config"
)

// Run statuses.
const (
	// StatusSent means the report was generated and delivered to Telegram.
	StatusSent = "sent"

	// StatusGenerated means the report was generated but delivery was off.
	StatusGenerated = "generated"

	// StatusSkipped means the daily lock was already held.
	StatusSkipped = "skipped"

	// StatusFailed means generation or delivery failed.
	StatusFailed = "failed"
)

// Record is one report run.
type Record struct {
	// ID is a generated UUID.
	ID string `json:"id"`

	// Job is the report job key (gold, silver, copper).
	Job string `json:"job"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the end-to-end run time.
	Duration time.Duration `json:"duration"`

	// Number is the report counter value, zero for skipped runs.
	Number int `json:"number,omitempty"`

	// Title is the published report title, empty for skipped runs.
	Title string `json:"title,omitempty"`

	// Provider is the provider that produced the text.
	Provider string `json:"provider,omitempty"`

	// Model is the model the provider used.
	Model string `json:"model,omitempty"`

	// Attempts is how many provider attempts the run spent.
	Attempts int `json:"attempts,omitempty"`

	// Status is one of the Status constants.
	Status string `json:"status"`

	// Error holds the failure message for failed runs.
	Error string `json:"error,omitempty"`
}

// NewRecord starts a record for a run beginning now.
func NewRecord(job string) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Job:       job,
		StartedAt: time.Now().UTC(),
	}
}

// Query filters ledger reads. Zero values match everything.
type Query struct {
	// Job restricts to one report job.
	Job string

	// Status restricts to one run status.
	Status string

	// Since restricts to runs started at or after this time.
	Since *time.Time

	// Until restricts to runs started before this time.
	Until *time.Time

	// Limit caps the number of returned records; zero means no cap.
	Limit int
}

// Storage persists run records. Query returns newest runs first.
type Storage interface {
	Store(ctx context.Context, record *Record) error
	Query(ctx context.Context, q *Query) ([]*Record, error)
	Count(ctx context.Context, q *Query) (int64, error)

	// Delete removes records started before the cutoff and returns how
	// many went.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)

	Close() error
}

// Open builds the Storage selected by the configuration.
func Open(cfg config.LedgerConfig) (Storage, error) {
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStorage(cfg.SQLitePath)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
