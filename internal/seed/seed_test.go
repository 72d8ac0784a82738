package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"immunizetrack/internal/records"
	"immunizetrack/pkg/domain"
)

func TestDefaultRecordCounts(t *testing.T) {
	snap, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	counts := map[string]int{
		"patients":     len(snap.Patients),
		"users":        len(snap.Users),
		"vaccines":     len(snap.Vaccines),
		"activities":   len(snap.Activities),
		"children":     len(snap.Children),
		"vaccinations": len(snap.Vaccinations),
	}
	want := map[string]int{"patients": 4, "users": 7, "vaccines": 6, "activities": 5, "children": 2, "vaccinations": 6}
	for k, n := range want {
		if counts[k] != n {
			t.Fatalf("%s: got %d want %d", k, counts[k], n)
		}
	}
}

func TestDefaultIDsAreUniquePerKind(t *testing.T) {
	snap := MustDefault()
	if _, err := records.Load(domain.EntityPatient, snap.Patients); err != nil {
		t.Fatalf("patients: %v", err)
	}
	if _, err := records.Load(domain.EntityUser, snap.Users); err != nil {
		t.Fatalf("users: %v", err)
	}
	if _, err := records.Load(domain.EntityVaccine, snap.Vaccines); err != nil {
		t.Fatalf("vaccines: %v", err)
	}
	if _, err := records.Load(domain.EntityActivity, snap.Activities); err != nil {
		t.Fatalf("activities: %v", err)
	}
	if _, err := records.Load(domain.EntityChild, snap.Children); err != nil {
		t.Fatalf("children: %v", err)
	}
	if _, err := records.Load(domain.EntityVaccination, snap.Vaccinations); err != nil {
		t.Fatalf("vaccinations: %v", err)
	}
}

func TestDefaultUserVariants(t *testing.T) {
	snap := MustDefault()
	var parents, staff int
	for _, u := range snap.Users {
		switch u.Profile.(type) {
		case domain.ParentLink:
			parents++
			ids, _ := u.ChildrenLinked()
			if len(ids) != 2 {
				t.Fatalf("parent %s linked to %v", u.ID, ids)
			}
		case domain.StaffAssignment:
			staff++
		}
	}
	if parents != 1 || staff != 6 {
		t.Fatalf("parents=%d staff=%d", parents, staff)
	}
}

func TestDefaultVaccinationsReferenceChildren(t *testing.T) {
	snap := MustDefault()
	known := make(map[string]struct{}, len(snap.Children))
	for _, c := range snap.Children {
		known[c.ID] = struct{}{}
	}
	for _, v := range snap.Vaccinations {
		if _, ok := known[v.ChildID]; !ok {
			t.Fatalf("vaccination %s references unknown child %q", v.ID, v.ChildID)
		}
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	if _, err := Decode(strings.NewReader("patients:\n  - id: P1\n    colour: red\n")); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestDecodeRejectsUnknownProfileKind(t *testing.T) {
	if _, err := Decode(strings.NewReader("users:\n  - id: \"1\"\n    kind: robot\n")); err == nil {
		t.Fatalf("expected profile kind error")
	}
}

func TestDecodeEmptyDocument(t *testing.T) {
	snap, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.Empty() {
		t.Fatalf("expected empty snapshot")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := "children:\n  - id: c1\n    name: Ana\nvaccinations:\n  - id: v1\n    childId: c1\n    vaccineName: BCG\n    status: completed\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	snap, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Children) != 1 || snap.Vaccinations[0].Status != domain.VaccinationCompleted {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected open error")
	}
}
