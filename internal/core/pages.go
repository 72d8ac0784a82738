package core

import (
	"immunizetrack/internal/presentation"
	"immunizetrack/internal/query"
	"immunizetrack/internal/records"
	"immunizetrack/pkg/domain"
)

// Row is one rendered list entry.
type Row struct {
	ID       string             `json:"id"`
	Category domain.CategoryTag `json:"category,omitempty"`
	Style    presentation.Style `json:"style"`
	Record   any                `json:"record"`
}

// Listing is the filtered list of one page.
type Listing struct {
	Kind     domain.EntityType `json:"kind"`
	Query    string            `json:"query"`
	Fields   []string          `json:"fields"`
	Revision uint64            `json:"revision"`
	Total    int               `json:"total"`
	Matched  int               `json:"matched"`
	Rows     []Row             `json:"rows"`
}

// SummaryBucket is one badge of a summary group.
type SummaryBucket struct {
	Tag   domain.CategoryTag `json:"tag"`
	Count int                `json:"count"`
	Style presentation.Style `json:"style"`
}

// SummaryGroup is a category breakdown of a page.
type SummaryGroup struct {
	Name    string          `json:"name"`
	Total   int             `json:"total"`
	Buckets []SummaryBucket `json:"buckets"`
}

// Count returns the count of tag within the group.
func (g SummaryGroup) Count(tag domain.CategoryTag) int {
	for _, b := range g.Buckets {
		if b.Tag == tag {
			return b.Count
		}
	}
	return 0
}

// Summary is the summary panel of a page, always computed over the full store.
type Summary struct {
	Kind     domain.EntityType `json:"kind"`
	Revision uint64            `json:"revision"`
	Total    int               `json:"total"`
	Groups   []SummaryGroup    `json:"groups"`
	Totals   map[string]int    `json:"totals,omitempty"`
}

// Group returns the named group.
func (s Summary) Group(name string) (SummaryGroup, bool) {
	for _, g := range s.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return SummaryGroup{}, false
}

type group[T domain.Record] struct {
	name       string
	table      string
	categorize domain.Categorizer[T]
	known      []domain.CategoryTag
}

type weighted[T domain.Record] struct {
	name   string
	weight func(T) int
}

// pageAPI is the kind-erased surface used by the HTTP adapter, CLI and
// exporter.
type pageAPI interface {
	kind() domain.EntityType
	list(q string, fields []string, catalog presentation.Catalog) Listing
	summary(catalog presentation.Catalog) Summary
	find(id string, catalog presentation.Catalog) (Row, bool)
	fields() []string
	revision() uint64
}

type page[T domain.Record] struct {
	entity  domain.EntityType
	engine  *query.Engine[T]
	groups  []group[T]
	weights []weighted[T]
}

func (p *page[T]) kind() domain.EntityType { return p.entity }

func (p *page[T]) fields() []string { return p.engine.Fields() }

func (p *page[T]) revision() uint64 { return p.engine.Store().Revision() }

func (p *page[T]) row(rec T, catalog presentation.Catalog) Row {
	r := Row{ID: rec.RecordID(), Record: rec}
	if len(p.groups) > 0 {
		primary := p.groups[0]
		r.Category = primary.categorize(rec)
		r.Style = catalog.Table(primary.table).Style(r.Category)
	}
	return r
}

func (p *page[T]) list(q string, fields []string, catalog presentation.Catalog) Listing {
	if len(fields) == 0 {
		fields = p.engine.Fields()
	}
	res := p.engine.Search(q, fields)
	rows := make([]Row, 0, len(res.Records))
	for _, rec := range res.Records {
		rows = append(rows, p.row(rec, catalog))
	}
	return Listing{
		Kind:     p.entity,
		Query:    q,
		Fields:   append([]string(nil), fields...),
		Revision: res.Revision,
		Total:    res.Total,
		Matched:  len(rows),
		Rows:     rows,
	}
}

func (p *page[T]) summary(catalog presentation.Catalog) Summary {
	return summarize(p.entity, p.engine.Store().Snapshot(), p.groups, p.weights, catalog)
}

func summarize[T domain.Record](kind domain.EntityType, view records.View[T], groups []group[T], weights []weighted[T], catalog presentation.Catalog) Summary {
	out := Summary{Kind: kind, Revision: view.Revision(), Total: view.Len()}
	for _, g := range groups {
		agg := query.Count(view, g.categorize, g.known...)
		out.Groups = append(out.Groups, summaryGroup(g.name, g.table, agg, catalog))
	}
	if len(weights) > 0 {
		out.Totals = make(map[string]int, len(weights))
		for _, w := range weights {
			out.Totals[w.name] = query.Sum(view, w.weight)
		}
	}
	return out
}

func summaryGroup(name, table string, agg query.Aggregate, catalog presentation.Catalog) SummaryGroup {
	styles := catalog.Table(table)
	buckets := agg.Buckets()
	g := SummaryGroup{Name: name, Total: agg.Total, Buckets: make([]SummaryBucket, 0, len(buckets))}
	for _, b := range buckets {
		g.Buckets = append(g.Buckets, SummaryBucket{Tag: b.Tag, Count: b.Count, Style: styles.Style(b.Tag)})
	}
	return g
}

func (p *page[T]) find(id string, catalog presentation.Catalog) (Row, bool) {
	rec, ok := p.engine.Get(id)
	if !ok {
		return Row{}, false
	}
	return p.row(rec, catalog), true
}
