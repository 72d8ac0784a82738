package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parentAccount() User {
	avatar := "/avatars/7.png"
	return User{
		ID:      "7",
		Name:    "Ana Santos",
		Role:    RoleParent,
		Status:  UserActive,
		Avatar:  &avatar,
		Profile: ParentLink{ChildrenLinked: []string{"1", "2"}},
	}
}

func TestUserVariantAccessors(t *testing.T) {
	staff := User{ID: "1", Role: RoleNurse, Profile: StaffAssignment{AssignedBarangay: "Poblacion"}}
	if b, ok := staff.AssignedBarangay(); !ok || b != "Poblacion" {
		t.Fatalf("expected staff barangay, got %q %v", b, ok)
	}
	if _, ok := staff.ChildrenLinked(); ok {
		t.Fatalf("staff must not expose linked children")
	}

	parent := parentAccount()
	if _, ok := parent.AssignedBarangay(); ok {
		t.Fatalf("parent must not expose an assigned barangay")
	}
	ids, ok := parent.ChildrenLinked()
	if !ok || !cmp.Equal(ids, []string{"1", "2"}) {
		t.Fatalf("unexpected linked children %v %v", ids, ok)
	}
	ids[0] = "mutated"
	if again, _ := parent.ChildrenLinked(); again[0] != "1" {
		t.Fatalf("ChildrenLinked must return a copy")
	}

	var bare User
	if _, ok := bare.AssignedBarangay(); ok {
		t.Fatalf("account without profile has no barangay")
	}
}

func TestUserCloneIsDeep(t *testing.T) {
	orig := parentAccount()
	cp := orig.Clone()
	*cp.Avatar = "changed"
	cp.Profile.(ParentLink).ChildrenLinked[0] = "changed"
	if *orig.Avatar != "/avatars/7.png" {
		t.Fatalf("clone shares avatar")
	}
	if ids, _ := orig.ChildrenLinked(); ids[0] != "1" {
		t.Fatalf("clone shares linked children")
	}
}

func TestUserJSONRoundTripKeepsVariant(t *testing.T) {
	for _, u := range []User{
		parentAccount(),
		{ID: "2", Role: RoleDoctor, Profile: StaffAssignment{AssignedBarangay: "Talomo"}},
		{ID: "3", Role: RoleAdmin},
	} {
		raw, err := json.Marshal(u)
		if err != nil {
			t.Fatalf("marshal %s: %v", u.ID, err)
		}
		var back User
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", u.ID, err)
		}
		if diff := cmp.Diff(u, back); diff != "" {
			t.Fatalf("round trip %s mismatch (-want +got):\n%s", u.ID, diff)
		}
	}
}

func TestUserWireOmitsForeignVariantFields(t *testing.T) {
	raw, err := json.Marshal(User{ID: "2", Profile: StaffAssignment{AssignedBarangay: "Talomo"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "childrenLinked") {
		t.Fatalf("staff wire form leaked parent fields: %s", raw)
	}
	if !strings.Contains(string(raw), `"kind":"staff"`) {
		t.Fatalf("expected staff kind: %s", raw)
	}
}

func TestUserWireRejectsUnknownKind(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"id":"9","kind":"robot"}`), &u); err == nil {
		t.Fatalf("expected unknown profile kind error")
	}
}
