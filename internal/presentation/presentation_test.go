package presentation

import (
	"errors"
	"testing"

	"immunizetrack/pkg/domain"
)

func TestDefaultsCoverEveryEnumeratedTag(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults incomplete: %v", err)
	}
}

func TestLookupFallsBackToUnknown(t *testing.T) {
	table := Defaults().Table(TablePatientStatus)
	if style, ok := table.Lookup(domain.PatientOverdue); !ok || style.Severity != SeverityHigh {
		t.Fatalf("unexpected overdue style %+v %v", style, ok)
	}
	if style, ok := table.Lookup("archived"); ok || style != Unknown {
		t.Fatalf("expected Unknown fallback, got %+v %v", style, ok)
	}
	if got := table.Style(domain.Uncategorized); got != Unknown {
		t.Fatalf("expected Unknown for uncategorized, got %+v", got)
	}
}

func TestStrictReportsUnknownCategory(t *testing.T) {
	_, err := Defaults().Table(TableVaccineStock).Strict("recalled")
	var unknown domain.UnknownCategoryError
	if !errors.As(err, &unknown) || unknown.Table != TableVaccineStock || unknown.Tag != "recalled" {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}
}

func TestMissingTableFallsBackEverywhere(t *testing.T) {
	table := Catalog{}.Table("nope")
	if table.Name() != "nope" || table.Style(domain.PatientDue) != Unknown {
		t.Fatalf("empty table must fall back")
	}
	if err := (Catalog{}).Validate(); err == nil {
		t.Fatalf("empty catalog must fail validation")
	}
}

func TestWithDoesNotMutateReceiver(t *testing.T) {
	base := Defaults().Table(TableUserStatus)
	next := base.With(domain.UserPending, Style{Label: "Awaiting", Severity: SeverityInfo})
	if base.Style(domain.UserPending).Label != "Pending" {
		t.Fatalf("With mutated the receiver")
	}
	if next.Style(domain.UserPending).Label != "Awaiting" {
		t.Fatalf("With did not apply")
	}
}

func TestOverride(t *testing.T) {
	base := Defaults()
	out, err := base.Override(map[string]map[string]Style{
		TableActivitySeverity: {"critical": {Label: "Critical", Severity: SeverityHigh}},
	})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if got := out.Table(TableActivitySeverity).Style("critical").Label; got != "Critical" {
		t.Fatalf("override not applied: %q", got)
	}
	if _, ok := base.Table(TableActivitySeverity).Lookup("critical"); ok {
		t.Fatalf("override mutated the base catalog")
	}
	if _, err := base.Override(map[string]map[string]Style{"missing": {}}); err == nil {
		t.Fatalf("expected unknown table error")
	}
	if _, err := base.Override(map[string]map[string]Style{
		TableUserRole: {"admin": {Label: "Admin", Severity: "scary"}},
	}); err == nil {
		t.Fatalf("expected unknown severity error")
	}
}

func TestParseSeverityAndTags(t *testing.T) {
	if sev, err := ParseSeverity("medium"); err != nil || sev != SeverityMedium {
		t.Fatalf("ParseSeverity(medium)=%q,%v", sev, err)
	}
	tags := Defaults().Table(TableVaccinationStatus).Tags()
	if len(tags) != 3 || tags[0] != domain.VaccinationCompleted || tags[2] != domain.VaccinationOverdue {
		t.Fatalf("unexpected tag order %v", tags)
	}
}
