// Package query implements the free-text filter and the category aggregate
// computed over record store views.
package query

import (
	"strings"

	"immunizetrack/internal/records"
	"immunizetrack/pkg/domain"
)

// Filter returns the records of view whose fields contain q, compared after
// lower-casing both sides. An empty q matches every record. Order follows the
// view; missing optional fields never match.
func Filter[T domain.Record](view records.View[T], q string, fields []domain.Field[T]) []T {
	if q == "" {
		return view.All()
	}
	needle := strings.ToLower(q)
	out := make([]T, 0, view.Len())
	for rec := range view.Records() {
		if matches(rec, needle, fields) {
			out = append(out, rec)
		}
	}
	return out
}

// Matches reports whether a single record matches q over fields.
func Matches[T domain.Record](rec T, q string, fields []domain.Field[T]) bool {
	if q == "" {
		return true
	}
	return matches(rec, strings.ToLower(q), fields)
}

func matches[T domain.Record](rec T, needle string, fields []domain.Field[T]) bool {
	for _, f := range fields {
		if f.Get == nil {
			continue
		}
		value, ok := f.Get(rec)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

// Select picks the accessors named in names from registry, in names order.
// Unknown names are skipped so they behave as never-matching fields.
func Select[T domain.Record](registry []domain.Field[T], names []string) []domain.Field[T] {
	out := make([]domain.Field[T], 0, len(names))
	for _, name := range names {
		for _, f := range registry {
			if f.Name == name {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
