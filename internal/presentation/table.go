// Package presentation maps category tags to display labels and severities.
// Lookups never fail: unknown tags resolve to a neutral fallback style.
package presentation

import (
	"fmt"
	"sort"

	"immunizetrack/pkg/domain"
)

// Severity ranks how urgently a category should be surfaced.
type Severity string

// Recognized severities.
const (
	SeverityInfo    Severity = "info"
	SeverityLow     Severity = "low"
	SeverityMedium  Severity = "medium"
	SeverityHigh    Severity = "high"
	SeverityNeutral Severity = "neutral"
)

var severities = map[Severity]struct{}{
	SeverityInfo: {}, SeverityLow: {}, SeverityMedium: {}, SeverityHigh: {}, SeverityNeutral: {},
}

// ParseSeverity validates a configured severity name.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if _, ok := severities[sev]; !ok {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// Style is the display treatment of a category tag.
type Style struct {
	Label    string   `json:"label" yaml:"label"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// Unknown is returned for tags without a configured style.
var Unknown = Style{Label: "Unknown", Severity: SeverityNeutral}

// Table is a static tag to style lookup.
type Table struct {
	name   string
	styles map[domain.CategoryTag]Style
}

// NewTable copies styles into a named table.
func NewTable(name string, styles map[domain.CategoryTag]Style) Table {
	cp := make(map[domain.CategoryTag]Style, len(styles))
	for k, v := range styles {
		cp[k] = v
	}
	return Table{name: name, styles: cp}
}

// Name returns the table name.
func (t Table) Name() string { return t.name }

// Lookup returns the style of tag, or Unknown and false.
func (t Table) Lookup(tag domain.CategoryTag) (Style, bool) {
	style, ok := t.styles[tag]
	if !ok {
		return Unknown, false
	}
	return style, true
}

// Style returns the style of tag, falling back to Unknown.
func (t Table) Style(tag domain.CategoryTag) Style {
	style, _ := t.Lookup(tag)
	return style
}

// Strict returns domain.UnknownCategoryError for tags without a style. It is
// used to validate configuration, never on the request path.
func (t Table) Strict(tag domain.CategoryTag) (Style, error) {
	style, ok := t.styles[tag]
	if !ok {
		return Style{}, domain.UnknownCategoryError{Table: t.name, Tag: tag}
	}
	return style, nil
}

// Covers checks that every tag in tags has a style.
func (t Table) Covers(tags []domain.CategoryTag) error {
	for _, tag := range tags {
		if _, err := t.Strict(tag); err != nil {
			return err
		}
	}
	return nil
}

// With returns a copy of the table with style set for tag.
func (t Table) With(tag domain.CategoryTag, style Style) Table {
	next := NewTable(t.name, t.styles)
	next.styles[tag] = style
	return next
}

// Tags returns the configured tags in lexical order.
func (t Table) Tags() []domain.CategoryTag {
	out := make([]domain.CategoryTag, 0, len(t.styles))
	for tag := range t.styles {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
