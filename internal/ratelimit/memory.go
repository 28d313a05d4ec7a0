package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryCounter struct {
	count   int
	resetAt time.Time
}

// MemoryStore is an in-process counter store. It is the fallback when no
// database is configured and is only correct within a single process.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]*memoryCounter),
		now:      time.Now,
	}
}

// Take implements Store.
func (s *MemoryStore) Take(_ context.Context, operation string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[operation]
	if !ok || now.After(c.resetAt) || now.Equal(c.resetAt) {
		c = &memoryCounter{count: 0, resetAt: now.Add(window)}
		s.counters[operation] = c
	}

	c.count++
	return c.count, c.resetAt, nil
}
