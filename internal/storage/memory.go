package storage

import (
	"context"
	"sync"
)

const memoryCap = 1000

// MemoryStore keeps the most recent interactions in a ring.
type MemoryStore struct {
	mu    sync.Mutex
	items []Interaction
}

// NewMemoryStore creates an in-memory interaction log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, it Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, it)
	if len(s.items) > memoryCap {
		s.items = s.items[len(s.items)-memoryCap:]
	}
	return nil
}

// Recent implements Store, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.items) {
		limit = len(s.items)
	}
	out := make([]Interaction, 0, limit)
	for i := len(s.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.items[i])
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
