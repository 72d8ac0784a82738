package core

import (
	"fmt"

	"immunizetrack/internal/presentation"
	"immunizetrack/internal/query"
	"immunizetrack/internal/records"
	"immunizetrack/pkg/domain"
)

// Directory owns one record store per kind.
type Directory struct {
	Patients     *records.Store[domain.Patient]
	Users        *records.Store[domain.User]
	Vaccines     *records.Store[domain.VaccineLot]
	Activities   *records.Store[domain.Activity]
	Children     *records.Store[domain.Child]
	Vaccinations *records.Store[domain.Vaccination]
}

// NewDirectory builds every store from a snapshot. Any duplicate id fails the
// whole load.
func NewDirectory(snap domain.Snapshot) (*Directory, error) {
	var (
		d   Directory
		err error
	)
	if d.Patients, err = records.Load(domain.EntityPatient, snap.Patients); err != nil {
		return nil, err
	}
	if d.Users, err = records.Load(domain.EntityUser, snap.Users); err != nil {
		return nil, err
	}
	if d.Vaccines, err = records.Load(domain.EntityVaccine, snap.Vaccines); err != nil {
		return nil, err
	}
	if d.Activities, err = records.Load(domain.EntityActivity, snap.Activities); err != nil {
		return nil, err
	}
	if d.Children, err = records.Load(domain.EntityChild, snap.Children); err != nil {
		return nil, err
	}
	if d.Vaccinations, err = records.Load(domain.EntityVaccination, snap.Vaccinations); err != nil {
		return nil, err
	}
	return &d, nil
}

// Snapshot exports the content of every store in store order.
func (d *Directory) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Patients:     d.Patients.All(),
		Users:        d.Users.All(),
		Vaccines:     d.Vaccines.All(),
		Activities:   d.Activities.All(),
		Children:     d.Children.All(),
		Vaccinations: d.Vaccinations.All(),
	}
}

// Replace swaps the content of every store. The snapshot is validated in full
// before any store changes, so a duplicate id leaves the directory untouched.
func (d *Directory) Replace(snap domain.Snapshot) error {
	if _, err := NewDirectory(snap); err != nil {
		return fmt.Errorf("replace directory: %w", err)
	}
	swaps := []func() error{
		func() error { return d.Patients.Swap(snap.Patients) },
		func() error { return d.Users.Swap(snap.Users) },
		func() error { return d.Vaccines.Swap(snap.Vaccines) },
		func() error { return d.Activities.Swap(snap.Activities) },
		func() error { return d.Children.Swap(snap.Children) },
		func() error { return d.Vaccinations.Swap(snap.Vaccinations) },
	}
	for _, swap := range swaps {
		if err := swap(); err != nil {
			return fmt.Errorf("replace directory: %w", err)
		}
	}
	return nil
}

type pages struct {
	patients     *page[domain.Patient]
	users        *page[domain.User]
	vaccines     *page[domain.VaccineLot]
	activities   *page[domain.Activity]
	children     *page[domain.Child]
	vaccinations *page[domain.Vaccination]
	byKind       map[domain.EntityType]pageAPI
}

func newPages(d *Directory, cacheSize int) (*pages, error) {
	var p pages
	var err error
	if p.patients, err = newPage(domain.EntityPatient, d.Patients, domain.PatientFields, domain.PatientSearch, cacheSize); err != nil {
		return nil, err
	}
	p.patients.groups = []group[domain.Patient]{
		{name: "status", table: presentation.TablePatientStatus, categorize: domain.PatientStatus, known: domain.PatientStatuses},
	}

	if p.users, err = newPage(domain.EntityUser, d.Users, domain.UserFields, domain.UserSearch, cacheSize); err != nil {
		return nil, err
	}
	p.users.groups = []group[domain.User]{
		{name: "role", table: presentation.TableUserRole, categorize: domain.UserRole, known: domain.UserRoles},
		{name: "status", table: presentation.TableUserStatus, categorize: domain.UserStatus, known: domain.UserStatuses},
	}

	if p.vaccines, err = newPage(domain.EntityVaccine, d.Vaccines, domain.VaccineFields, domain.VaccineSearch, cacheSize); err != nil {
		return nil, err
	}
	p.vaccines.groups = []group[domain.VaccineLot]{
		{name: "stock", table: presentation.TableVaccineStock, categorize: domain.VaccineStock, known: domain.VaccineStocks},
	}
	p.vaccines.weights = []weighted[domain.VaccineLot]{{name: "totalDoses", weight: domain.VaccineDoses}}

	if p.activities, err = newPage(domain.EntityActivity, d.Activities, domain.ActivityFields, domain.ActivitySearch, cacheSize); err != nil {
		return nil, err
	}
	p.activities.groups = []group[domain.Activity]{
		{name: "severity", table: presentation.TableActivitySeverity, categorize: domain.ActivitySeverity, known: domain.ActivitySeverities},
		{name: "type", categorize: domain.ActivityType, known: domain.ActivityTypes},
	}

	if p.children, err = newPage(domain.EntityChild, d.Children, domain.ChildFields, domain.ChildSearch, cacheSize); err != nil {
		return nil, err
	}

	if p.vaccinations, err = newPage(domain.EntityVaccination, d.Vaccinations, domain.VaccinationFields, domain.VaccinationSearch, cacheSize); err != nil {
		return nil, err
	}
	p.vaccinations.groups = []group[domain.Vaccination]{
		{name: "status", table: presentation.TableVaccinationStatus, categorize: domain.VaccinationStatus, known: domain.VaccinationStatuses},
	}

	p.byKind = map[domain.EntityType]pageAPI{
		domain.EntityPatient:     p.patients,
		domain.EntityUser:        p.users,
		domain.EntityVaccine:     p.vaccines,
		domain.EntityActivity:    p.activities,
		domain.EntityChild:       p.children,
		domain.EntityVaccination: p.vaccinations,
	}
	return &p, nil
}

func newPage[T domain.Record](kind domain.EntityType, store *records.Store[T], registry []domain.Field[T], defaults []string, cacheSize int) (*page[T], error) {
	engine, err := query.NewEngine(store, registry, defaults, cacheSize)
	if err != nil {
		return nil, fmt.Errorf("%s engine: %w", kind, err)
	}
	return &page[T]{entity: kind, engine: engine}, nil
}
