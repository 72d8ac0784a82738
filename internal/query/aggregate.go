package query

import (
	"iter"
	"slices"
	"sort"

	"immunizetrack/internal/records"
	"immunizetrack/pkg/domain"
)

// Bucket is one category count of an aggregate.
type Bucket struct {
	Tag   domain.CategoryTag `json:"tag"`
	Count int                `json:"count"`
}

// Aggregate holds category counts over a full store view.
type Aggregate struct {
	Counts map[domain.CategoryTag]int `json:"counts"`
	Total  int                        `json:"total"`
	known  []domain.CategoryTag
}

// Count computes the category counts of every record in view. Tags listed in
// known are reported with a zero count when no record carries them. Records
// whose categorizer returns an empty tag land in domain.Uncategorized.
func Count[T domain.Record](view records.View[T], categorize domain.Categorizer[T], known ...domain.CategoryTag) Aggregate {
	return count(view.Records(), categorize, known)
}

// CountSlice is Count over an explicit record slice, used for subsets such as
// one child's vaccination history.
func CountSlice[T domain.Record](recs []T, categorize domain.Categorizer[T], known ...domain.CategoryTag) Aggregate {
	return count(slices.Values(recs), categorize, known)
}

func count[T domain.Record](seq iter.Seq[T], categorize domain.Categorizer[T], known []domain.CategoryTag) Aggregate {
	agg := Aggregate{
		Counts: make(map[domain.CategoryTag]int, len(known)+1),
		known:  append([]domain.CategoryTag(nil), known...),
	}
	for _, tag := range known {
		agg.Counts[tag] = 0
	}
	for rec := range seq {
		agg.Total++
		tag := categorize(rec)
		if tag == "" {
			tag = domain.Uncategorized
		}
		agg.Counts[tag]++
	}
	return agg
}

// Get returns the count of tag.
func (a Aggregate) Get(tag domain.CategoryTag) int { return a.Counts[tag] }

// Sum adds every bucket. It equals Total by construction.
func (a Aggregate) Sum() int {
	n := 0
	for _, c := range a.Counts {
		n += c
	}
	return n
}

// Buckets returns the counts with known tags first, in their declared order,
// followed by any other tag in lexical order.
func (a Aggregate) Buckets() []Bucket {
	out := make([]Bucket, 0, len(a.Counts))
	seen := make(map[domain.CategoryTag]struct{}, len(a.known))
	for _, tag := range a.known {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, Bucket{Tag: tag, Count: a.Counts[tag]})
	}
	var extra []domain.CategoryTag
	for tag := range a.Counts {
		if _, ok := seen[tag]; !ok {
			extra = append(extra, tag)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, tag := range extra {
		out = append(out, Bucket{Tag: tag, Count: a.Counts[tag]})
	}
	return out
}

// Sum totals weight over every record of view.
func Sum[T domain.Record](view records.View[T], weight func(T) int) int {
	total := 0
	for rec := range view.Records() {
		total += weight(rec)
	}
	return total
}
