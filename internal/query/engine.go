package query

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"immunizetrack/internal/records"
	"immunizetrack/pkg/domain"
)

type cacheKey struct {
	revision uint64
	query    string
	fields   string
}

// Engine binds a store to the field registry of its record kind and, when
// cacheSize is positive, memoizes filter results per store revision.
type Engine[T domain.Record] struct {
	store    *records.Store[T]
	registry []domain.Field[T]
	defaults []string
	cache    *lru.Cache[cacheKey, []T]
}

// NewEngine constructs an engine. defaults names the fields searched when a
// caller does not pass its own list.
func NewEngine[T domain.Record](store *records.Store[T], registry []domain.Field[T], defaults []string, cacheSize int) (*Engine[T], error) {
	e := &Engine[T]{store: store, registry: registry, defaults: append([]string(nil), defaults...)}
	if cacheSize > 0 {
		cache, err := lru.New[cacheKey, []T](cacheSize)
		if err != nil {
			return nil, err
		}
		e.cache = cache
	}
	return e, nil
}

// Store returns the bound store.
func (e *Engine[T]) Store() *records.Store[T] { return e.store }

// Fields returns the default search field names.
func (e *Engine[T]) Fields() []string { return append([]string(nil), e.defaults...) }

// Filter runs the free-text filter over the default fields.
func (e *Engine[T]) Filter(q string) []T {
	return e.FilterFields(q, e.defaults)
}

// FilterFields runs the free-text filter over the named fields.
func (e *Engine[T]) FilterFields(q string, names []string) []T {
	return e.Search(q, names).Records
}

// Result is a filter outcome bound to the view it was computed from.
type Result[T domain.Record] struct {
	Revision uint64
	Total    int
	Records  []T
}

// Search filters a single snapshot of the store, so the counts and records
// of the result always agree.
func (e *Engine[T]) Search(q string, names []string) Result[T] {
	view := e.store.Snapshot()
	res := Result[T]{Revision: view.Revision(), Total: view.Len()}
	if e.cache == nil {
		res.Records = Filter(view, q, Select(e.registry, names))
		return res
	}
	key := cacheKey{revision: view.Revision(), query: strings.ToLower(q), fields: strings.Join(names, "\x00")}
	if hit, ok := e.cache.Get(key); ok {
		res.Records = records.CloneAll(hit)
		return res
	}
	res.Records = Filter(view, q, Select(e.registry, names))
	e.cache.Add(key, records.CloneAll(res.Records))
	return res
}

// Count aggregates the whole store, ignoring any filter.
func (e *Engine[T]) Count(categorize domain.Categorizer[T], known ...domain.CategoryTag) Aggregate {
	return Count(e.store.Snapshot(), categorize, known...)
}

// Get looks a record up by id.
func (e *Engine[T]) Get(id string) (T, bool) { return e.store.Get(id) }
