package domain

import (
	"errors"
	"testing"
)

func TestParseEntityType(t *testing.T) {
	cases := map[string]EntityType{
		"patient":      EntityPatient,
		"Patients":     EntityPatient,
		" users ":      EntityUser,
		"inventory":    EntityVaccine,
		"vaccines":     EntityVaccine,
		"activities":   EntityActivity,
		"CHILDREN":     EntityChild,
		"vaccinations": EntityVaccination,
		"vaccination":  EntityVaccination,
	}
	for in, want := range cases {
		got, ok := ParseEntityType(in)
		if !ok || got != want {
			t.Fatalf("ParseEntityType(%q)=%q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseEntityType("invoices"); ok {
		t.Fatalf("expected unknown kind")
	}
}

func TestPatientCompletionIsClamped(t *testing.T) {
	cases := []struct {
		done, total int
		want        float64
	}{
		{0, 0, 0},
		{3, 6, 0.5},
		{9, 6, 1},
		{-1, 6, 0},
	}
	for _, c := range cases {
		p := Patient{VaccinesCompleted: c.done, VaccinesTotal: c.total}
		if got := p.Completion(); got != c.want {
			t.Fatalf("Completion(%d/%d)=%v want %v", c.done, c.total, got, c.want)
		}
	}
}

func TestCategorizersFallBackToUncategorized(t *testing.T) {
	if got := PatientStatus(Patient{}); got != Uncategorized {
		t.Fatalf("empty patient status = %q", got)
	}
	if got := ActivitySeverity(Activity{}); got != Uncategorized {
		t.Fatalf("activity without severity = %q", got)
	}
	high := SeverityHigh
	if got := ActivitySeverity(Activity{Severity: &high}); got != SeverityHigh {
		t.Fatalf("activity severity = %q", got)
	}
	if got := VaccineStock(VaccineLot{Status: StockLow}); got != StockLow {
		t.Fatalf("vaccine stock = %q", got)
	}
}

func TestOptionalFieldsReportAbsence(t *testing.T) {
	field := fieldNamed(t, PatientFields, "nextAppointment")
	if _, ok := field.Get(Patient{}); ok {
		t.Fatalf("missing appointment must report absent")
	}
	when := "2026-11-02"
	if v, ok := field.Get(Patient{NextAppointment: &when}); !ok || v != when {
		t.Fatalf("unexpected appointment %q %v", v, ok)
	}
	user := fieldNamed(t, ActivityFields, "user")
	if _, ok := user.Get(Activity{}); ok {
		t.Fatalf("activity without user must report absent")
	}
}

func TestSearchDefaultsNameRegisteredFields(t *testing.T) {
	check := func(kind string, registered []string, search []string) {
		known := make(map[string]struct{}, len(registered))
		for _, n := range registered {
			known[n] = struct{}{}
		}
		for _, n := range search {
			if _, ok := known[n]; !ok {
				t.Fatalf("%s search field %q is not registered", kind, n)
			}
		}
	}
	check("patient", names(PatientFields), PatientSearch)
	check("user", names(UserFields), UserSearch)
	check("vaccine", names(VaccineFields), VaccineSearch)
	check("activity", names(ActivityFields), ActivitySearch)
	check("child", names(ChildFields), ChildSearch)
	check("vaccination", names(VaccinationFields), VaccinationSearch)
}

func TestSnapshotEmpty(t *testing.T) {
	if !(Snapshot{}).Empty() {
		t.Fatalf("zero snapshot must be empty")
	}
	if (Snapshot{Children: []Child{{ID: "1"}}}).Empty() {
		t.Fatalf("snapshot with a child is not empty")
	}
}

func TestErrorMessages(t *testing.T) {
	var err error = ErrNotFound{Entity: EntityPatient, ID: "PAT9"}
	var nf ErrNotFound
	if !errors.As(err, &nf) || nf.ID != "PAT9" || err.Error() != "patient PAT9 not found" {
		t.Fatalf("unexpected not found error %v", err)
	}
	dup := DuplicateIDError{Kind: EntityChild, ID: "1"}
	if dup.Error() != `child store: duplicate id "1"` {
		t.Fatalf("unexpected duplicate error %q", dup.Error())
	}
}

func fieldNamed[T Record](t *testing.T, fields []Field[T], name string) Field[T] {
	t.Helper()
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %q not registered", name)
	return Field[T]{}
}

func names[T Record](fields []Field[T]) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
