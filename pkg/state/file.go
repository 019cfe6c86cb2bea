package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// countersFile is the counter map file name inside the state directory.
const countersFile = "counters.json"

// FileStore keeps counters in counters.json and one <job>.sent stamp per
// job, in the same formats the report tooling has always written, so an
// existing state directory carries over without migration.
//
// A corrupted or missing file counts as empty; the next write replaces it.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the state directory when needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// NextCounter implements Store.
func (s *FileStore) NextCounter(ctx context.Context, key string) (int, error) {
	if key == "" {
		return 0, fmt.Errorf("counter key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counters := s.readCounters()
	counters[key]++
	if err := s.writeCounters(counters); err != nil {
		return 0, err
	}
	return counters[key], nil
}

// Counter implements Store.
func (s *FileStore) Counter(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readCounters()[key], nil
}

// AcquireDaily implements Store.
func (s *FileStore) AcquireDaily(ctx context.Context, job, day string) (bool, error) {
	if job == "" || day == "" {
		return false, fmt.Errorf("job and day cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readStamp(job) == day {
		return false, nil
	}
	if err := s.writeStamp(job, day); err != nil {
		return false, err
	}
	return true, nil
}

// LastSent implements Store.
func (s *FileStore) LastSent(ctx context.Context, job string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readStamp(job), nil
}

// Close implements Store. The file backend holds no open handles.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) countersPath() string {
	return filepath.Join(s.dir, countersFile)
}

func (s *FileStore) stampPath(job string) string {
	return filepath.Join(s.dir, job+".sent")
}

func (s *FileStore) readCounters() map[string]int {
	counters := make(map[string]int)
	data, err := os.ReadFile(s.countersPath())
	if err != nil {
		return counters
	}
	if err := json.Unmarshal(data, &counters); err != nil {
		return make(map[string]int)
	}
	return counters
}

func (s *FileStore) writeCounters(counters map[string]int) error {
	data, err := json.MarshalIndent(counters, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding counters: %w", err)
	}
	if err := writeFileAtomic(s.countersPath(), append(data, '\n')); err != nil {
		return fmt.Errorf("writing counters: %w", err)
	}
	return nil
}

func (s *FileStore) readStamp(job string) string {
	data, err := os.ReadFile(s.stampPath(job))
	if err != nil {
		return ""
	}
	var stamp struct {
		LastSent string `json:"last_sent"`
	}
	if err := json.Unmarshal(data, &stamp); err != nil {
		return ""
	}
	return stamp.LastSent
}

func (s *FileStore) writeStamp(job, day string) error {
	data, err := json.Marshal(map[string]string{"last_sent": day})
	if err != nil {
		return fmt.Errorf("encoding stamp: %w", err)
	}
	if err := writeFileAtomic(s.stampPath(job), append(data, '\n')); err != nil {
		return fmt.Errorf("writing stamp: %w", err)
	}
	return nil
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated state file.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
