// Package domain defines the record kinds, category enumerations and field
// accessors shared by the immunization dashboard and the parent portal.
package domain

import "strings"

// EntityType identifies the kind of record held by a store.
type EntityType string

// Supported record kinds used for store identity, persistence buckets and routing.
const (
	// EntityPatient identifies a registered child patient.
	EntityPatient EntityType = "patient"
	// EntityUser identifies a staff or parent account.
	EntityUser EntityType = "user"
	// EntityVaccine identifies a vaccine lot held in inventory.
	EntityVaccine EntityType = "vaccine"
	// EntityActivity identifies a dashboard activity feed entry.
	EntityActivity EntityType = "activity"
	// EntityChild identifies a child linked to a parent account.
	EntityChild EntityType = "child"
	// EntityVaccination identifies a vaccination history entry for a child.
	EntityVaccination EntityType = "vaccination"
)

// EntityTypes lists every record kind in display order.
func EntityTypes() []EntityType {
	return []EntityType{EntityPatient, EntityUser, EntityVaccine, EntityActivity, EntityChild, EntityVaccination}
}

var entityAliases = map[string]EntityType{
	"patients":     EntityPatient,
	"users":        EntityUser,
	"vaccines":     EntityVaccine,
	"inventory":    EntityVaccine,
	"activities":   EntityActivity,
	"children":     EntityChild,
	"vaccinations": EntityVaccination,
}

// ParseEntityType resolves a kind name, accepting the plural page names used
// in routes and CLI arguments.
func ParseEntityType(name string) (EntityType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, kind := range EntityTypes() {
		if string(kind) == name {
			return kind, true
		}
	}
	kind, ok := entityAliases[name]
	return kind, ok
}

// CategoryTag is the enumerated value used to bucket records in summaries.
type CategoryTag string

// Uncategorized collects records whose category field is absent.
const Uncategorized CategoryTag = "uncategorized"

// PatientStatus enumerates immunization schedule states for a patient.
const (
	PatientUpToDate CategoryTag = "up-to-date"
	PatientDue      CategoryTag = "due"
	PatientOverdue  CategoryTag = "overdue"
	PatientNew      CategoryTag = "new"
)

// User roles.
const (
	RoleAdmin        CategoryTag = "admin"
	RoleDoctor       CategoryTag = "doctor"
	RoleNurse        CategoryTag = "nurse"
	RoleReceptionist CategoryTag = "receptionist"
	RoleParent       CategoryTag = "parent"
)

// User account states.
const (
	UserActive   CategoryTag = "active"
	UserInactive CategoryTag = "inactive"
	UserPending  CategoryTag = "pending"
)

// Vaccine stock states.
const (
	StockInStock    CategoryTag = "in-stock"
	StockLow        CategoryTag = "low-stock"
	StockOutOfStock CategoryTag = "out-of-stock"
	StockExpired    CategoryTag = "expired"
)

// Activity severities. Activities without a severity are Uncategorized.
const (
	SeverityHigh   CategoryTag = "high"
	SeverityMedium CategoryTag = "medium"
	SeverityLow    CategoryTag = "low"
)

// Activity types.
const (
	ActivityAdmission   CategoryTag = "admission"
	ActivityDischarge   CategoryTag = "discharge"
	ActivityAppointment CategoryTag = "appointment"
	ActivityAlert       CategoryTag = "alert"
	ActivityStaff       CategoryTag = "staff"
)

// Vaccination states shown in the parent portal.
const (
	VaccinationCompleted CategoryTag = "completed"
	VaccinationDue       CategoryTag = "due"
	VaccinationOverdue   CategoryTag = "overdue"
)

// Record is implemented by every entity held in a record store.
type Record interface {
	RecordID() string
}

// Cloner is implemented by records that own pointer or slice fields. Clone
// returns a copy sharing no memory with the receiver.
type Cloner[T any] interface {
	Clone() T
}

var (
	_ Cloner[Patient]     = Patient{}
	_ Cloner[User]        = User{}
	_ Cloner[VaccineLot]  = VaccineLot{}
	_ Cloner[Activity]    = Activity{}
	_ Cloner[Child]       = Child{}
	_ Cloner[Vaccination] = Vaccination{}
)

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Patient is a child registered for immunization.
type Patient struct {
	ID                string      `json:"id" yaml:"id"`
	Name              string      `json:"name" yaml:"name"`
	DateOfBirth       string      `json:"dateOfBirth" yaml:"dateOfBirth"`
	Age               string      `json:"age" yaml:"age"`
	ParentName        string      `json:"parentName" yaml:"parentName"`
	ParentPhone       string      `json:"parentPhone" yaml:"parentPhone"`
	ParentEmail       string      `json:"parentEmail" yaml:"parentEmail"`
	Barangay          string      `json:"barangay" yaml:"barangay"`
	Address           string      `json:"address" yaml:"address"`
	QRCode            string      `json:"qrCode" yaml:"qrCode"`
	NextAppointment   *string     `json:"nextAppointment,omitempty" yaml:"nextAppointment,omitempty"`
	LastVisit         string      `json:"lastVisit" yaml:"lastVisit"`
	VaccinesCompleted int         `json:"vaccinesCompleted" yaml:"vaccinesCompleted"`
	VaccinesTotal     int         `json:"vaccinesTotal" yaml:"vaccinesTotal"`
	Status            CategoryTag `json:"status" yaml:"status"`
}

// RecordID implements Record.
func (p Patient) RecordID() string { return p.ID }

// Clone returns a deep copy of the patient.
func (p Patient) Clone() Patient {
	p.NextAppointment = cloneString(p.NextAppointment)
	return p
}

// Completion returns the fraction of scheduled vaccines already given, in [0,1].
func (p Patient) Completion() float64 {
	if p.VaccinesTotal <= 0 {
		return 0
	}
	ratio := float64(p.VaccinesCompleted) / float64(p.VaccinesTotal)
	if ratio > 1 {
		return 1
	}
	if ratio < 0 {
		return 0
	}
	return ratio
}

// VaccineLot is a batch of a vaccine held in cold storage.
type VaccineLot struct {
	ID            string      `json:"id" yaml:"id"`
	Name          string      `json:"name" yaml:"name"`
	Manufacturer  string      `json:"manufacturer" yaml:"manufacturer"`
	BatchNumber   string      `json:"batchNumber" yaml:"batchNumber"`
	Quantity      int         `json:"quantity" yaml:"quantity"`
	MinStockLevel int         `json:"minStockLevel" yaml:"minStockLevel"`
	ExpiryDate    string      `json:"expiryDate" yaml:"expiryDate"`
	Temperature   string      `json:"temperature" yaml:"temperature"`
	Status        CategoryTag `json:"status" yaml:"status"`
	Location      string      `json:"location" yaml:"location"`
	LastUpdated   string      `json:"lastUpdated" yaml:"lastUpdated"`
}

// RecordID implements Record.
func (v VaccineLot) RecordID() string { return v.ID }

// Clone returns a copy of the lot. VaccineLot holds only values.
func (v VaccineLot) Clone() VaccineLot { return v }

// BelowMinimum reports whether the lot holds fewer doses than its reorder level.
func (v VaccineLot) BelowMinimum() bool { return v.Quantity < v.MinStockLevel }

// ActivityUser names the staff member attached to an activity entry.
type ActivityUser struct {
	Name   string `json:"name" yaml:"name"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Activity is an entry of the dashboard's recent activity feed.
type Activity struct {
	ID          string        `json:"id" yaml:"id"`
	Type        CategoryTag   `json:"type" yaml:"type"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Time        string        `json:"time" yaml:"time"`
	Severity    *CategoryTag  `json:"severity,omitempty" yaml:"severity,omitempty"`
	User        *ActivityUser `json:"user,omitempty" yaml:"user,omitempty"`
}

// RecordID implements Record.
func (a Activity) RecordID() string { return a.ID }

// Clone returns a deep copy of the entry.
func (a Activity) Clone() Activity {
	if a.Severity != nil {
		sev := *a.Severity
		a.Severity = &sev
	}
	if a.User != nil {
		user := *a.User
		a.User = &user
	}
	return a
}

// Child is a child linked to the signed-in parent account.
type Child struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	DateOfBirth string `json:"dateOfBirth" yaml:"dateOfBirth"`
	Age         string `json:"age" yaml:"age"`
	Avatar      string `json:"avatar" yaml:"avatar"`
}

// RecordID implements Record.
func (c Child) RecordID() string { return c.ID }

// Clone returns a copy of the child. Child holds only values.
func (c Child) Clone() Child { return c }

// Vaccination is a single dose entry of a child's vaccination history.
type Vaccination struct {
	ID          string      `json:"id" yaml:"id"`
	ChildID     string      `json:"childId" yaml:"childId"`
	VaccineName string      `json:"vaccineName" yaml:"vaccineName"`
	Date        string      `json:"date" yaml:"date"`
	NextDue     *string     `json:"nextDue,omitempty" yaml:"nextDue,omitempty"`
	Status      CategoryTag `json:"status" yaml:"status"`
	Provider    string      `json:"provider" yaml:"provider"`
	Location    string      `json:"location" yaml:"location"`
}

// RecordID implements Record.
func (v Vaccination) RecordID() string { return v.ID }

// Pending reports whether the dose is still to be given.
func (v Vaccination) Pending() bool {
	return v.Status == VaccinationDue || v.Status == VaccinationOverdue
}

// Clone returns a deep copy of the entry.
func (v Vaccination) Clone() Vaccination {
	v.NextDue = cloneString(v.NextDue)
	return v
}
