package loader

import (
	"context"
	"sync"
)

// Store owns the current snapshot. The composition root creates it at
// startup and components read through it; a refresh discards the old
// snapshot wholesale. There is no package-level state.
type Store struct {
	client *Client

	mu      sync.RWMutex
	current *Snapshot
}

// NewStore creates a store; the snapshot is empty until the first Refresh.
func NewStore(client *Client) *Store {
	return &Store{
		client:  client,
		current: emptySnapshot(),
	}
}

// Current returns the snapshot from the latest completed load cycle.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh runs a full load and swaps in the result, returning it.
// Individual resources that failed to load arrive empty (fail-open).
func (s *Store) Refresh(ctx context.Context) *Snapshot {
	snap := s.client.Load(ctx)
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	return snap
}
