// Package store holds the canonical in-memory collections. It carries
// no business logic; the engine is its only writer.
package store

import (
	"sync"

	"rms-sync-service/internal/domain"
)

type Store struct {
	mu    sync.RWMutex
	state domain.Snapshot
}

func New(initial domain.Snapshot) *Store {
	return &Store{state: initial.Clone()}
}

// View returns a deep copy of the full snapshot.
func (s *Store) View() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Replace swaps in a whole new snapshot, e.g. after loading from the
// persistence adapter.
func (s *Store) Replace(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snap.Clone()
}

// Mutate runs fn with exclusive access to the live state. The engine
// serializes all calls, so fn never observes a partial update from a
// concurrent writer.
func (s *Store) Mutate(fn func(*domain.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}
