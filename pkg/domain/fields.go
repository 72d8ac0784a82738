package domain

// Field is a named string accessor over a record kind. Get reports false when
// the record does not carry the field (optional or variant-only fields).
type Field[T Record] struct {
	Name string
	Get  func(T) (string, bool)
}

// Categorizer maps a record to exactly one category tag.
type Categorizer[T Record] func(T) CategoryTag

func present(v string) (string, bool) { return v, true }

func optional(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	return *v, true
}

// PatientFields lists every searchable accessor of a patient.
var PatientFields = []Field[Patient]{
	{Name: "name", Get: func(p Patient) (string, bool) { return present(p.Name) }},
	{Name: "parentName", Get: func(p Patient) (string, bool) { return present(p.ParentName) }},
	{Name: "barangay", Get: func(p Patient) (string, bool) { return present(p.Barangay) }},
	{Name: "id", Get: func(p Patient) (string, bool) { return present(p.ID) }},
	{Name: "address", Get: func(p Patient) (string, bool) { return present(p.Address) }},
	{Name: "parentEmail", Get: func(p Patient) (string, bool) { return present(p.ParentEmail) }},
	{Name: "parentPhone", Get: func(p Patient) (string, bool) { return present(p.ParentPhone) }},
	{Name: "qrCode", Get: func(p Patient) (string, bool) { return present(p.QRCode) }},
	{Name: "nextAppointment", Get: func(p Patient) (string, bool) { return optional(p.NextAppointment) }},
}

// PatientSearch is the default search field list of the patient page.
var PatientSearch = []string{"name", "parentName", "barangay", "id"}

// PatientStatus categorizes patients by immunization status.
func PatientStatus(p Patient) CategoryTag { return tagOrUncategorized(p.Status) }

// PatientStatuses enumerates the patient status tags in display order.
var PatientStatuses = []CategoryTag{PatientUpToDate, PatientDue, PatientOverdue, PatientNew}

// UserFields lists every searchable accessor of an account.
var UserFields = []Field[User]{
	{Name: "name", Get: func(u User) (string, bool) { return present(u.Name) }},
	{Name: "email", Get: func(u User) (string, bool) { return present(u.Email) }},
	{Name: "department", Get: func(u User) (string, bool) { return present(u.Department) }},
	{Name: "role", Get: func(u User) (string, bool) { return present(string(u.Role)) }},
	{Name: "phone", Get: func(u User) (string, bool) { return present(u.Phone) }},
	{Name: "location", Get: func(u User) (string, bool) { return present(u.Location) }},
	{Name: "assignedBarangay", Get: User.AssignedBarangay},
}

// UserSearch is the default search field list of the user page.
var UserSearch = []string{"name", "email", "department", "role", "assignedBarangay"}

// UserRole categorizes accounts by role.
func UserRole(u User) CategoryTag { return tagOrUncategorized(u.Role) }

// UserStatus categorizes accounts by account state.
func UserStatus(u User) CategoryTag { return tagOrUncategorized(u.Status) }

// UserRoles enumerates the role tags in display order.
var UserRoles = []CategoryTag{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist, RoleParent}

// UserStatuses enumerates account states in display order.
var UserStatuses = []CategoryTag{UserActive, UserInactive, UserPending}

// VaccineFields lists every searchable accessor of a vaccine lot.
var VaccineFields = []Field[VaccineLot]{
	{Name: "name", Get: func(v VaccineLot) (string, bool) { return present(v.Name) }},
	{Name: "manufacturer", Get: func(v VaccineLot) (string, bool) { return present(v.Manufacturer) }},
	{Name: "batchNumber", Get: func(v VaccineLot) (string, bool) { return present(v.BatchNumber) }},
	{Name: "location", Get: func(v VaccineLot) (string, bool) { return present(v.Location) }},
}

// VaccineSearch is the default search field list of the inventory page.
var VaccineSearch = []string{"name", "manufacturer", "batchNumber"}

// VaccineStock categorizes lots by stock state.
func VaccineStock(v VaccineLot) CategoryTag { return tagOrUncategorized(v.Status) }

// VaccineStocks enumerates stock states in display order.
var VaccineStocks = []CategoryTag{StockInStock, StockLow, StockOutOfStock, StockExpired}

// VaccineDoses weighs a lot by the doses it holds.
func VaccineDoses(v VaccineLot) int { return v.Quantity }

// ActivityFields lists every searchable accessor of an activity entry.
var ActivityFields = []Field[Activity]{
	{Name: "title", Get: func(a Activity) (string, bool) { return present(a.Title) }},
	{Name: "description", Get: func(a Activity) (string, bool) { return present(a.Description) }},
	{Name: "user", Get: func(a Activity) (string, bool) {
		if a.User == nil {
			return "", false
		}
		return a.User.Name, true
	}},
	{Name: "type", Get: func(a Activity) (string, bool) { return present(string(a.Type)) }},
}

// ActivitySearch is the default search field list of the activity feed.
var ActivitySearch = []string{"title", "description", "user"}

// ActivitySeverity categorizes entries by severity; entries without one are
// Uncategorized.
func ActivitySeverity(a Activity) CategoryTag {
	if a.Severity == nil {
		return Uncategorized
	}
	return tagOrUncategorized(*a.Severity)
}

// ActivityType categorizes entries by type.
func ActivityType(a Activity) CategoryTag { return tagOrUncategorized(a.Type) }

// ActivitySeverities enumerates severity tags in display order.
var ActivitySeverities = []CategoryTag{SeverityHigh, SeverityMedium, SeverityLow}

// ActivityTypes enumerates activity types in display order.
var ActivityTypes = []CategoryTag{ActivityAlert, ActivityAdmission, ActivityDischarge, ActivityAppointment, ActivityStaff}

// ChildFields lists every searchable accessor of a child.
var ChildFields = []Field[Child]{
	{Name: "name", Get: func(c Child) (string, bool) { return present(c.Name) }},
	{Name: "id", Get: func(c Child) (string, bool) { return present(c.ID) }},
}

// ChildSearch is the default search field list of the child picker.
var ChildSearch = []string{"name"}

// VaccinationFields lists every searchable accessor of a vaccination entry.
var VaccinationFields = []Field[Vaccination]{
	{Name: "vaccineName", Get: func(v Vaccination) (string, bool) { return present(v.VaccineName) }},
	{Name: "provider", Get: func(v Vaccination) (string, bool) { return present(v.Provider) }},
	{Name: "location", Get: func(v Vaccination) (string, bool) { return present(v.Location) }},
	{Name: "nextDue", Get: func(v Vaccination) (string, bool) { return optional(v.NextDue) }},
}

// VaccinationSearch is the default search field list of the portal history.
var VaccinationSearch = []string{"vaccineName", "provider", "location"}

// VaccinationStatus categorizes history entries by status.
func VaccinationStatus(v Vaccination) CategoryTag { return tagOrUncategorized(v.Status) }

// VaccinationStatuses enumerates vaccination states in display order.
var VaccinationStatuses = []CategoryTag{VaccinationCompleted, VaccinationDue, VaccinationOverdue}

func tagOrUncategorized(tag CategoryTag) CategoryTag {
	if tag == "" {
		return Uncategorized
	}
	return tag
}
