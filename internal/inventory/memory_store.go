package inventory

import (
	"context"
	"sync"
	"time"
)

// MemoryQuantityStore is the in-process fallback cache, used when the
// terminal runs without Redis and in tests. Same TTL semantics: an entry
// past its age is treated as absent.
type MemoryQuantityStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	qty        int
	capturedAt time.Time
}

func NewMemoryQuantityStore(ttl time.Duration) *MemoryQuantityStore {
	return &MemoryQuantityStore{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]memEntry{},
	}
}

// WithClock swaps the clock, for tests.
func (s *MemoryQuantityStore) WithClock(now func() time.Time) *MemoryQuantityStore {
	s.now = now
	return s
}

func (s *MemoryQuantityStore) Get(_ context.Context, inventoryID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[inventoryID]
	if !ok {
		return 0, false, nil
	}
	if s.ttl > 0 && s.now().Sub(e.capturedAt) >= s.ttl {
		delete(s.entries, inventoryID)
		return 0, false, nil
	}
	return e.qty, true, nil
}

func (s *MemoryQuantityStore) Set(_ context.Context, inventoryID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[inventoryID] = memEntry{qty: qty, capturedAt: s.now()}
	return nil
}

func (s *MemoryQuantityStore) Delete(_ context.Context, inventoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, inventoryID)
	return nil
}

func (s *MemoryQuantityStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string]memEntry{}
	return nil
}
