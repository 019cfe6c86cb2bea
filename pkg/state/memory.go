package state

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store for tests and dry runs. Nothing
// survives a restart.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]int
	stamps   map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]int),
		stamps:   make(map[string]string),
	}
}

// NextCounter implements Store.
func (s *MemoryStore) NextCounter(ctx context.Context, key string) (int, error) {
	if key == "" {
		return 0, fmt.Errorf("counter key cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], nil
}

// Counter implements Store.
func (s *MemoryStore) Counter(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key], nil
}

// AcquireDaily implements Store.
func (s *MemoryStore) AcquireDaily(ctx context.Context, job, day string) (bool, error) {
	if job == "" || day == "" {
		return false, fmt.Errorf("job and day cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stamps[job] == day {
		return false, nil
	}
	s.stamps[job] = day
	return true, nil
}

// LastSent implements Store.
func (s *MemoryStore) LastSent(ctx context.Context, job string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stamps[job], nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
