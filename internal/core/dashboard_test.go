package core

import (
	"context"
	"math"
	"testing"

	"immunizetrack/pkg/domain"
)

func TestDashboardOverview(t *testing.T) {
	svc := newTestService(t)
	got := svc.Dashboard(context.Background())
	want := Overview{
		Patients:         4,
		PatientsDue:      1,
		PatientsOverdue:  1,
		NewPatients:      1,
		VaccineLots:      6,
		TotalDoses:       785,
		LotsNeedingStock: 2,
		ExpiredLots:      1,
		ActiveStaff:      4,
		PendingAccounts:  1,
		HighAlerts:       1,
	}
	if math.Abs(got.CoverageRate-19.0/30.0) > 1e-9 {
		t.Fatalf("coverage = %v", got.CoverageRate)
	}
	got.CoverageRate = 0
	if got != want {
		t.Fatalf("overview mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestDashboardOnEmptyStores(t *testing.T) {
	svc, err := NewService(context.Background(), domain.Snapshot{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if got := svc.Dashboard(context.Background()); got != (Overview{}) {
		t.Fatalf("expected zero overview, got %+v", got)
	}
}
