package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is the current ledger schema version.
const SchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    job        TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    duration_ms INTEGER NOT NULL,
    number     INTEGER,
    title      TEXT,
    provider   TEXT,
    model      TEXT,
    attempts   INTEGER,
    status     TEXT NOT NULL,
    error      TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_job ON runs(job);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// SQLiteStorage implements Storage on a SQLite file.
type SQLiteStorage struct {
	db        *sql.DB
	mu        sync.RWMutex
	closeOnce sync.Once

	storeStmt *sql.Stmt
}

// NewSQLiteStorage opens (creating when needed) the ledger database at path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger database path cannot be empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enabling WAL: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating ledger schema: %w", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("ledger schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}

	var err error
	s.storeStmt, err = s.db.Prepare(`
		INSERT INTO runs (id, job, started_at, duration_ms, number, title, provider, model, attempts, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}

	return nil
}

// Store implements Storage.
func (s *SQLiteStorage) Store(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.ID == "" || record.Job == "" || record.Status == "" {
		return fmt.Errorf("record needs id, job, and status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.storeStmt.ExecContext(ctx,
		record.ID,
		record.Job,
		record.StartedAt.UTC().Format(time.RFC3339Nano),
		record.Duration.Milliseconds(),
		record.Number,
		record.Title,
		record.Provider,
		record.Model,
		record.Attempts,
		record.Status,
		record.Error,
	)
	if err != nil {
		return fmt.Errorf("storing run record: %w", err)
	}
	return nil
}

// Query implements Storage.
func (s *SQLiteStorage) Query(ctx context.Context, q *Query) ([]*Record, error) {
	where, args := buildWhere(q)

	query := `
		SELECT id, job, started_at, duration_ms, number, title, provider, model, attempts, status, error
		FROM runs` + where + `
		ORDER BY started_at DESC`
	if q != nil && q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			r          Record
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &r.Job, &startedAt, &durationMS, &r.Number,
			&r.Title, &r.Provider, &r.Model, &r.Attempts, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at %q: %w", startedAt, err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run records: %w", err)
	}
	return records, nil
}

// Count implements Storage.
func (s *SQLiteStorage) Count(ctx context.Context, q *Query) (int64, error) {
	where, args := buildWhere(q)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return count, nil
}

// Delete implements Storage.
func (s *SQLiteStorage) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM runs WHERE started_at < ?",
		olderThan.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting runs: %w", err)
	}
	return result.RowsAffected()
}

// Close implements Storage. Idempotent.
func (s *SQLiteStorage) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		if s.storeStmt != nil {
			s.storeStmt.Close()
		}
		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

func buildWhere(q *Query) (string, []any) {
	if q == nil {
		return "", nil
	}

	var (
		clauses []string
		args    []any
	)
	if q.Job != "" {
		clauses = append(clauses, "job = ?")
		args = append(args, q.Job)
	}
	if q.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, q.Status)
	}
	if q.Since != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, q.Since.UTC().Format(time.RFC3339Nano))
	}
	if q.Until != nil {
		clauses = append(clauses, "started_at < ?")
		args = append(args, q.Until.UTC().Format(time.RFC3339Nano))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
