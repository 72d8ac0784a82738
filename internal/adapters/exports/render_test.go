package exports

import (
	"strings"
	"testing"

	"immunizetrack/internal/core"
	"immunizetrack/pkg/domain"
)

func TestRenderCSVFlattensNestedValues(t *testing.T) {
	sev := domain.SeverityHigh
	listing := core.Listing{
		Kind: domain.EntityActivity,
		Rows: []core.Row{
			{ID: "1", Category: domain.SeverityHigh, Record: domain.Activity{ID: "1", Title: "Stock, low", Severity: &sev, User: &domain.ActivityUser{Name: "Dr. Smith"}}},
			{ID: "2", Category: domain.Uncategorized, Record: domain.Activity{ID: "2", Title: "No user"}},
		},
	}
	out, err := Render(FormatCSV, listing)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	if !strings.Contains(lines[1], `"Stock, low"`) || !strings.Contains(lines[1], "Dr. Smith") {
		t.Fatalf("expected quoted title and nested user, got %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], ",uncategorized") {
		t.Fatalf("expected category column, got %q", lines[2])
	}
}

func TestRenderEmptyListing(t *testing.T) {
	out, err := Render(FormatCSV, core.Listing{Kind: domain.EntityPatient})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(string(out)) != "category" {
		t.Fatalf("unexpected empty csv %q", out)
	}
	if _, err := Render("xml", core.Listing{}); err == nil {
		t.Fatalf("expected unsupported format")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": FormatCSV, " JSON ": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if FormatCSV.ContentType() != "text/csv" || Format("x").ContentType() != "application/octet-stream" {
		t.Fatalf("unexpected content types")
	}
}
