package quota

import (
	"context"
	"sync"
	"time"

	"htsflow/internal/model"
)

// MemoryStore is an in-process Store implementation. It backs tests and
// keeps the tracker usable without a database.
type MemoryStore struct {
	usage model.Usage
	mu    sync.Mutex
}

// NewMemoryStore creates an empty in-memory usage store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetUsage returns the current counter.
func (s *MemoryStore) GetUsage(_ context.Context) (model.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage, nil
}

// IncrementUsage bumps the counter and stamps the last-used time.
func (s *MemoryStore) IncrementUsage(_ context.Context) (model.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage.Used++
	s.usage.LastUsedAt = time.Now()
	return s.usage, nil
}

// ResetUsage zeroes the counter and clears the last-used time.
func (s *MemoryStore) ResetUsage(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = model.Usage{}
	return nil
}

// SetUsed force-sets the counter. Test helper.
func (s *MemoryStore) SetUsed(used int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage.Used = used
}
