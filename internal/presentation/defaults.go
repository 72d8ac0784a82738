package presentation

import (
	"fmt"

	"immunizetrack/pkg/domain"
)

// Table names.
const (
	TablePatientStatus     = "patient_status"
	TableUserRole          = "user_role"
	TableUserStatus        = "user_status"
	TableVaccineStock      = "vaccine_stock"
	TableActivitySeverity  = "activity_severity"
	TableVaccinationStatus = "vaccination_status"
)

// Catalog groups the tables consumed by the pages.
type Catalog map[string]Table

// Defaults returns the built-in tables.
func Defaults() Catalog {
	return Catalog{
		TablePatientStatus: NewTable(TablePatientStatus, map[domain.CategoryTag]Style{
			domain.PatientUpToDate: {Label: "Up to date", Severity: SeverityLow},
			domain.PatientDue:      {Label: "Due", Severity: SeverityMedium},
			domain.PatientOverdue:  {Label: "Overdue", Severity: SeverityHigh},
			domain.PatientNew:      {Label: "New", Severity: SeverityInfo},
		}),
		TableUserRole: NewTable(TableUserRole, map[domain.CategoryTag]Style{
			domain.RoleAdmin:        {Label: "Admin", Severity: SeverityHigh},
			domain.RoleDoctor:       {Label: "Doctor", Severity: SeverityInfo},
			domain.RoleNurse:        {Label: "Nurse", Severity: SeverityLow},
			domain.RoleReceptionist: {Label: "Receptionist", Severity: SeverityNeutral},
			domain.RoleParent:       {Label: "Parent", Severity: SeverityNeutral},
		}),
		TableUserStatus: NewTable(TableUserStatus, map[domain.CategoryTag]Style{
			domain.UserActive:   {Label: "Active", Severity: SeverityLow},
			domain.UserInactive: {Label: "Inactive", Severity: SeverityHigh},
			domain.UserPending:  {Label: "Pending", Severity: SeverityMedium},
		}),
		TableVaccineStock: NewTable(TableVaccineStock, map[domain.CategoryTag]Style{
			domain.StockInStock:    {Label: "In stock", Severity: SeverityLow},
			domain.StockLow:        {Label: "Low stock", Severity: SeverityMedium},
			domain.StockOutOfStock: {Label: "Out of stock", Severity: SeverityHigh},
			domain.StockExpired:    {Label: "Expired", Severity: SeverityNeutral},
		}),
		TableActivitySeverity: NewTable(TableActivitySeverity, map[domain.CategoryTag]Style{
			domain.SeverityHigh:   {Label: "High", Severity: SeverityHigh},
			domain.SeverityMedium: {Label: "Medium", Severity: SeverityMedium},
			domain.SeverityLow:    {Label: "Low", Severity: SeverityLow},
		}),
		TableVaccinationStatus: NewTable(TableVaccinationStatus, map[domain.CategoryTag]Style{
			domain.VaccinationCompleted: {Label: "Completed", Severity: SeverityLow},
			domain.VaccinationDue:       {Label: "Due", Severity: SeverityMedium},
			domain.VaccinationOverdue:   {Label: "Overdue", Severity: SeverityHigh},
		}),
	}
}

// Table returns the named table or an empty table that falls back on every
// lookup.
func (c Catalog) Table(name string) Table {
	if t, ok := c[name]; ok {
		return t
	}
	return NewTable(name, nil)
}

// Override layers configured styles over the catalog. Overrides may only name
// known tables and recognized severities.
func (c Catalog) Override(overrides map[string]map[string]Style) (Catalog, error) {
	out := make(Catalog, len(c))
	for k, v := range c {
		out[k] = v
	}
	for name, styles := range overrides {
		table, ok := out[name]
		if !ok {
			return nil, fmt.Errorf("presentation: unknown table %q", name)
		}
		for tag, style := range styles {
			if _, err := ParseSeverity(string(style.Severity)); err != nil {
				return nil, fmt.Errorf("presentation %s/%s: %w", name, tag, err)
			}
			table = table.With(domain.CategoryTag(tag), style)
		}
		out[name] = table
	}
	return out, nil
}

// Validate checks that every enumerated tag of each page has a style.
func (c Catalog) Validate() error {
	checks := map[string][]domain.CategoryTag{
		TablePatientStatus:     domain.PatientStatuses,
		TableUserRole:          domain.UserRoles,
		TableUserStatus:        domain.UserStatuses,
		TableVaccineStock:      domain.VaccineStocks,
		TableActivitySeverity:  domain.ActivitySeverities,
		TableVaccinationStatus: domain.VaccinationStatuses,
	}
	for name, tags := range checks {
		if err := c.Table(name).Covers(tags); err != nil {
			return err
		}
	}
	return nil
}
