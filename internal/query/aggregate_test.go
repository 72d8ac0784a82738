package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"immunizetrack/internal/records"
	"immunizetrack/pkg/domain"
)

func TestCountReportsKnownTagsAndUncategorized(t *testing.T) {
	high := domain.SeverityHigh
	store := records.MustLoad(domain.EntityActivity, []domain.Activity{
		{ID: "1", Type: domain.ActivityAlert, Severity: &high},
		{ID: "2", Type: domain.ActivityAdmission},
		{ID: "3", Type: domain.ActivityStaff},
	})
	agg := Count(store.Snapshot(), domain.ActivitySeverity, domain.ActivitySeverities...)
	if agg.Total != 3 || agg.Sum() != agg.Total {
		t.Fatalf("total=%d sum=%d", agg.Total, agg.Sum())
	}
	want := []Bucket{
		{Tag: domain.SeverityHigh, Count: 1},
		{Tag: domain.SeverityMedium, Count: 0},
		{Tag: domain.SeverityLow, Count: 0},
		{Tag: domain.Uncategorized, Count: 2},
	}
	if diff := cmp.Diff(want, agg.Buckets()); diff != "" {
		t.Fatalf("buckets mismatch (-want +got):\n%s", diff)
	}
}

func TestCountEmptyTagLandsInUncategorized(t *testing.T) {
	agg := CountSlice([]domain.Child{{ID: "1"}, {ID: "2"}}, func(domain.Child) domain.CategoryTag { return "" })
	if agg.Get(domain.Uncategorized) != 2 {
		t.Fatalf("expected 2 uncategorized, got %v", agg.Counts)
	}
}

func TestBucketsOrderExtraTagsLexically(t *testing.T) {
	recs := []domain.Vaccination{
		{ID: "1", Status: "zeta"},
		{ID: "2", Status: "alpha"},
		{ID: "3", Status: domain.VaccinationCompleted},
	}
	agg := CountSlice(recs, domain.VaccinationStatus, domain.VaccinationCompleted, domain.VaccinationCompleted)
	var got []domain.CategoryTag
	for _, b := range agg.Buckets() {
		got = append(got, b.Tag)
	}
	want := []domain.CategoryTag{domain.VaccinationCompleted, "alpha", "zeta"}
	if !cmp.Equal(want, got) {
		t.Fatalf("unexpected bucket order %v", got)
	}
}

func TestSum(t *testing.T) {
	store := records.MustLoad(domain.EntityVaccine, []domain.VaccineLot{{ID: "1", Quantity: 40}, {ID: "2", Quantity: 2}})
	if got := Sum(store.Snapshot(), domain.VaccineDoses); got != 42 {
		t.Fatalf("Sum=%d", got)
	}
}

func TestZeroQuantityLotCountsAsOutOfStock(t *testing.T) {
	store := records.MustLoad(domain.EntityVaccine, []domain.VaccineLot{
		{ID: "1", Quantity: 150, Status: domain.StockInStock},
		{ID: "2", Quantity: 0, Status: domain.StockOutOfStock},
	})
	agg := Count(store.Snapshot(), domain.VaccineStock, domain.VaccineStocks...)
	if agg.Get(domain.StockOutOfStock) != 1 || agg.Get(domain.StockInStock) != 1 {
		t.Fatalf("unexpected stock counts %v", agg.Counts)
	}
	if got := Sum(store.Snapshot(), func(v domain.VaccineLot) int { return v.Quantity }); got != 150 {
		t.Fatalf("expected 150 doses, got %d", got)
	}
}
