package core

import (
	"context"

	"immunizetrack/internal/query"
	"immunizetrack/pkg/domain"
)

// Overview is the headline metric panel of the admin dashboard.
type Overview struct {
	Patients         int     `json:"patients"`
	PatientsDue      int     `json:"patientsDue"`
	PatientsOverdue  int     `json:"patientsOverdue"`
	NewPatients      int     `json:"newPatients"`
	CoverageRate     float64 `json:"coverageRate"`
	VaccineLots      int     `json:"vaccineLots"`
	TotalDoses       int     `json:"totalDoses"`
	LotsNeedingStock int     `json:"lotsNeedingStock"`
	ExpiredLots      int     `json:"expiredLots"`
	ActiveStaff      int     `json:"activeStaff"`
	PendingAccounts  int     `json:"pendingAccounts"`
	HighAlerts       int     `json:"highAlerts"`
}

// Dashboard computes the overview across every store.
func (s *Service) Dashboard(ctx context.Context) Overview {
	var out Overview
	_ = s.run(ctx, "dashboard.overview", func(context.Context) error {
		out = s.overview()
		return nil
	})
	return out
}

func (s *Service) overview() Overview {
	patients := s.dir.Patients.Snapshot()
	byStatus := query.Count(patients, domain.PatientStatus, domain.PatientStatuses...)

	vaccines := s.dir.Vaccines.Snapshot()
	byStock := query.Count(vaccines, domain.VaccineStock, domain.VaccineStocks...)

	users := s.dir.Users.Snapshot()
	active := 0
	pending := 0
	for u := range users.Records() {
		if u.Role == domain.RoleParent {
			continue
		}
		switch u.Status {
		case domain.UserActive:
			active++
		case domain.UserPending:
			pending++
		}
	}

	bySeverity := query.Count(s.dir.Activities.Snapshot(), domain.ActivitySeverity, domain.ActivitySeverities...)

	completed, scheduled := 0, 0
	for p := range patients.Records() {
		completed += p.VaccinesCompleted
		scheduled += p.VaccinesTotal
	}
	coverage := 0.0
	if scheduled > 0 {
		coverage = float64(completed) / float64(scheduled)
	}

	return Overview{
		Patients:         byStatus.Total,
		PatientsDue:      byStatus.Get(domain.PatientDue),
		PatientsOverdue:  byStatus.Get(domain.PatientOverdue),
		NewPatients:      byStatus.Get(domain.PatientNew),
		CoverageRate:     coverage,
		VaccineLots:      byStock.Total,
		TotalDoses:       query.Sum(vaccines, domain.VaccineDoses),
		LotsNeedingStock: byStock.Get(domain.StockLow) + byStock.Get(domain.StockOutOfStock),
		ExpiredLots:      byStock.Get(domain.StockExpired),
		ActiveStaff:      active,
		PendingAccounts:  pending,
		HighAlerts:       bySeverity.Get(domain.SeverityHigh),
	}
}
