package state

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore keeps counters and send stamps in one SQLite database. WAL
// mode with periodic passive checkpoints keeps the daemon's writes cheap.
type SQLiteStore struct {
	db        *sql.DB
	done      chan struct{}
	mu        sync.Mutex
	closeOnce sync.Once

	nextStmt    *sql.Stmt
	counterStmt *sql.Stmt
	stampStmt   *sql.Stmt
	lastStmt    *sql.Stmt
}

const stateSchema = `
CREATE TABLE IF NOT EXISTS counters (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sent_stamps (
	job       TEXT PRIMARY KEY,
	last_sent TEXT NOT NULL
);
`

// NewSQLiteStore opens (creating when needed) the state database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state database path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		path, int((5 * time.Second).Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(stateSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state schema: %w", err)
	}

	s := &SQLiteStore{
		db:   db,
		done: make(chan struct{}),
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	go s.checkpointLoop()

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.nextStmt, err = s.db.Prepare(`
		INSERT INTO counters (key, value) VALUES (?, 1)
		ON CONFLICT (key) DO UPDATE SET value = value + 1
		RETURNING value
	`)
	if err != nil {
		return fmt.Errorf("preparing counter increment: %w", err)
	}

	s.counterStmt, err = s.db.Prepare(`SELECT value FROM counters WHERE key = ?`)
	if err != nil {
		return fmt.Errorf("preparing counter read: %w", err)
	}

	s.stampStmt, err = s.db.Prepare(`
		INSERT INTO sent_stamps (job, last_sent) VALUES (?, ?)
		ON CONFLICT (job) DO UPDATE SET last_sent = excluded.last_sent
	`)
	if err != nil {
		return fmt.Errorf("preparing stamp upsert: %w", err)
	}

	s.lastStmt, err = s.db.Prepare(`SELECT last_sent FROM sent_stamps WHERE job = ?`)
	if err != nil {
		return fmt.Errorf("preparing stamp read: %w", err)
	}

	return nil
}

// NextCounter implements Store.
func (s *SQLiteStore) NextCounter(ctx context.Context, key string) (int, error) {
	if key == "" {
		return 0, fmt.Errorf("counter key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var value int
	if err := s.nextStmt.QueryRowContext(ctx, key).Scan(&value); err != nil {
		return 0, fmt.Errorf("incrementing counter %q: %w", key, err)
	}
	return value, nil
}

// Counter implements Store.
func (s *SQLiteStore) Counter(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value int
	err := s.counterStmt.QueryRowContext(ctx, key).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading counter %q: %w", key, err)
	}
	return value, nil
}

// AcquireDaily implements Store.
func (s *SQLiteStore) AcquireDaily(ctx context.Context, job, day string) (bool, error) {
	if job == "" || day == "" {
		return false, fmt.Errorf("job and day cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var last string
	err := s.lastStmt.QueryRowContext(ctx, job).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("reading stamp for %q: %w", job, err)
	}
	if last == day {
		return false, nil
	}

	if _, err := s.stampStmt.ExecContext(ctx, job, day); err != nil {
		return false, fmt.Errorf("stamping %q: %w", job, err)
	}
	return true, nil
}

// LastSent implements Store.
func (s *SQLiteStore) LastSent(ctx context.Context, job string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last string
	err := s.lastStmt.QueryRowContext(ctx, job).Scan(&last)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading stamp for %q: %w", job, err)
	}
	return last, nil
}

// Close implements Store. Idempotent.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		for _, stmt := range []*sql.Stmt{s.nextStmt, s.counterStmt, s.stampStmt, s.lastStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
