package query

import (
	"testing"

	"immunizetrack/pkg/domain"
)

func TestEngineCacheFollowsRevision(t *testing.T) {
	store := patients()
	e, err := NewEngine(store, domain.PatientFields, domain.PatientSearch, 8)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	address := []string{"address"}
	first := e.FilterFields("davao", address)
	if len(first) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(first))
	}
	first[0].Name = "mutated"
	if again := e.FilterFields("DAVAO", address); again[0].Name == "mutated" {
		t.Fatalf("cached results must not alias callers")
	}
	if err := store.Swap([]domain.Patient{{ID: "PAT009", Address: "Davao"}}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if got := e.FilterFields("davao", address); len(got) != 1 || got[0].ID != "PAT009" {
		t.Fatalf("stale cache after swap: %v", ids(got))
	}
}

func TestEngineWithoutCache(t *testing.T) {
	e, err := NewEngine(patients(), domain.PatientFields, domain.PatientSearch, 0)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if got := e.FilterFields("talomo", []string{"barangay"}); len(got) != 1 {
		t.Fatalf("unexpected matches %v", ids(got))
	}
	fields := e.Fields()
	fields[0] = "mutated"
	if e.Fields()[0] != domain.PatientSearch[0] {
		t.Fatalf("Fields must return a copy")
	}
	agg := e.Count(domain.PatientStatus, domain.PatientStatuses...)
	if agg.Total != 3 || agg.Get(domain.PatientNew) != 0 {
		t.Fatalf("unexpected aggregate %+v", agg)
	}
	if _, ok := e.Get("PAT001"); !ok {
		t.Fatalf("expected PAT001")
	}
}

func TestSearchBindsCountsToOneView(t *testing.T) {
	store := patients()
	e, err := NewEngine(store, domain.PatientFields, domain.PatientSearch, 4)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	res := e.Search("", domain.PatientSearch)
	if res.Total != 3 || len(res.Records) != 3 || res.Revision != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if err := store.Swap(nil); err != nil {
		t.Fatalf("swap: %v", err)
	}
	res = e.Search("", domain.PatientSearch)
	if res.Total != 0 || len(res.Records) != 0 || res.Revision != 2 {
		t.Fatalf("unexpected result after swap %+v", res)
	}
}
