// Package memory provides an in-process snapshot store for tests and
// ephemeral deployments.
package memory

import (
	"context"
	"sync"

	"immunizetrack/internal/infra/persistence/bucket"
	"immunizetrack/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

// Store keeps the last saved snapshot in its encoded form so callers never
// share slices with it.
type Store struct {
	mu      sync.RWMutex
	entries []bucket.Entry
	saves   int
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Load implements domain.PersistentStore.
func (s *Store) Load(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bucket.Decode(s.entries)
}

// Save implements domain.PersistentStore.
func (s *Store) Save(_ context.Context, snap domain.Snapshot) error {
	entries, err := bucket.Encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.saves++
	return nil
}

// Saves reports how many snapshots were written.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close implements domain.PersistentStore.
func (s *Store) Close() error { return nil }
