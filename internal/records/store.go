// Package records provides the immutable, ordered record store shared by every
// dashboard page.
package records

import (
	"iter"
	"sync"

	"immunizetrack/pkg/domain"
)

// View is an immutable point-in-time snapshot of a store. Filters and
// aggregates run against a single view so they never observe a partial swap.
type View[T domain.Record] struct {
	kind     domain.EntityType
	records  []T
	index    map[string]int
	revision uint64
}

// Kind returns the record kind held by the view.
func (v View[T]) Kind() domain.EntityType { return v.kind }

// Revision identifies the store content the view was taken from.
func (v View[T]) Revision() uint64 { return v.revision }

// Len returns the number of records.
func (v View[T]) Len() int { return len(v.records) }

// All returns deep copies of the records in insertion order.
func (v View[T]) All() []T { return CloneAll(v.records) }

// Records iterates deep copies of the records in insertion order. The
// sequence is finite and may be ranged over any number of times.
func (v View[T]) Records() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, rec := range v.records {
			if !yield(Clone(rec)) {
				return
			}
		}
	}
}

// Get looks a record up by primary key.
func (v View[T]) Get(id string) (T, bool) {
	i, ok := v.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return Clone(v.records[i]), true
}

// Clone deep-copies rec when its kind implements domain.Cloner.
func Clone[T domain.Record](rec T) T {
	if c, ok := any(rec).(domain.Cloner[T]); ok {
		return c.Clone()
	}
	return rec
}

// CloneAll deep-copies every record of recs into a new slice.
func CloneAll[T domain.Record](recs []T) []T {
	out := make([]T, len(recs))
	for i, rec := range recs {
		out[i] = Clone(rec)
	}
	return out
}

// Store holds an ordered, de-duplicated set of records of one kind. Reads
// never observe a partially applied Swap: the whole view is replaced at once.
type Store[T domain.Record] struct {
	mu   sync.RWMutex
	view View[T]
}

// Load builds a store from the supplied records, preserving their order.
// It fails with domain.DuplicateIDError when two records share an id.
func Load[T domain.Record](kind domain.EntityType, initial []T) (*Store[T], error) {
	view, err := buildView(kind, initial, 1)
	if err != nil {
		return nil, err
	}
	return &Store[T]{view: view}, nil
}

// MustLoad is Load for static definitions known to be valid.
func MustLoad[T domain.Record](kind domain.EntityType, initial []T) *Store[T] {
	s, err := Load(kind, initial)
	if err != nil {
		panic(err)
	}
	return s
}

func buildView[T domain.Record](kind domain.EntityType, initial []T, revision uint64) (View[T], error) {
	records := CloneAll(initial)
	index := make(map[string]int, len(records))
	for i, rec := range records {
		id := rec.RecordID()
		if _, dup := index[id]; dup {
			return View[T]{}, domain.DuplicateIDError{Kind: kind, ID: id}
		}
		index[id] = i
	}
	return View[T]{kind: kind, records: records, index: index, revision: revision}, nil
}

// Snapshot returns the current immutable view.
func (s *Store[T]) Snapshot() View[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Kind returns the record kind held by the store.
func (s *Store[T]) Kind() domain.EntityType { return s.Snapshot().kind }

// All returns the records in insertion order.
func (s *Store[T]) All() []T { return s.Snapshot().All() }

// Get looks a record up by primary key.
func (s *Store[T]) Get(id string) (T, bool) { return s.Snapshot().Get(id) }

// Len returns the number of records.
func (s *Store[T]) Len() int { return s.Snapshot().Len() }

// Revision increases every time the content is replaced.
func (s *Store[T]) Revision() uint64 { return s.Snapshot().revision }

// Swap atomically replaces the store content. On a duplicate id the store is
// left untouched and domain.DuplicateIDError is returned.
func (s *Store[T]) Swap(records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, err := buildView(s.view.kind, records, s.view.revision+1)
	if err != nil {
		return err
	}
	s.view = view
	return nil
}
