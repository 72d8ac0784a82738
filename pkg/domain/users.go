package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ProfileKind discriminates the variants of a user account.
type ProfileKind string

// Account variants.
const (
	ProfileStaff  ProfileKind = "staff"
	ProfileParent ProfileKind = "parent"
)

// UserProfile is the variant part of a user account. It is sealed: only
// StaffAssignment and ParentLink implement it.
type UserProfile interface {
	ProfileKind() ProfileKind
	sealedProfile()
}

// StaffAssignment is carried by clinic staff accounts.
type StaffAssignment struct {
	AssignedBarangay string
}

// ProfileKind implements UserProfile.
func (StaffAssignment) ProfileKind() ProfileKind { return ProfileStaff }
func (StaffAssignment) sealedProfile()           {}

// ParentLink is carried by parent accounts and lists linked child ids.
type ParentLink struct {
	ChildrenLinked []string
}

// ProfileKind implements UserProfile.
func (ParentLink) ProfileKind() ProfileKind { return ProfileParent }
func (ParentLink) sealedProfile()           {}

// User is an account of the administration dashboard.
type User struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Role       CategoryTag
	Department string
	Status     CategoryTag
	LastLogin  string
	JoinDate   string
	Avatar     *string
	Location   string
	Profile    UserProfile
}

// RecordID implements Record.
func (u User) RecordID() string { return u.ID }

// AssignedBarangay returns the staff assignment, reporting false for parent
// accounts and accounts without a profile.
func (u User) AssignedBarangay() (string, bool) {
	staff, ok := u.Profile.(StaffAssignment)
	if !ok {
		return "", false
	}
	return staff.AssignedBarangay, true
}

// ChildrenLinked returns the linked child ids of a parent account.
func (u User) ChildrenLinked() ([]string, bool) {
	parent, ok := u.Profile.(ParentLink)
	if !ok {
		return nil, false
	}
	out := make([]string, len(parent.ChildrenLinked))
	copy(out, parent.ChildrenLinked)
	return out, true
}

// Clone returns a deep copy of the account.
func (u User) Clone() User {
	cp := u
	cp.Avatar = cloneString(u.Avatar)
	if parent, ok := u.Profile.(ParentLink); ok {
		cp.Profile = ParentLink{ChildrenLinked: slices.Clone(parent.ChildrenLinked)}
	}
	return cp
}

// UserWire is the flattened serialized form of a User. Variant fields are
// only populated for the matching ProfileKind.
type UserWire struct {
	ID               string      `json:"id" yaml:"id"`
	Name             string      `json:"name" yaml:"name"`
	Email            string      `json:"email" yaml:"email"`
	Phone            string      `json:"phone" yaml:"phone"`
	Role             CategoryTag `json:"role" yaml:"role"`
	Department       string      `json:"department" yaml:"department"`
	Status           CategoryTag `json:"status" yaml:"status"`
	LastLogin        string      `json:"lastLogin" yaml:"lastLogin"`
	JoinDate         string      `json:"joinDate" yaml:"joinDate"`
	Avatar           *string     `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Location         string      `json:"location" yaml:"location"`
	Kind             ProfileKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	AssignedBarangay string      `json:"assignedBarangay,omitempty" yaml:"assignedBarangay,omitempty"`
	ChildrenLinked   []string    `json:"childrenLinked,omitempty" yaml:"childrenLinked,omitempty"`
}

// Wire flattens the account for serialization.
func (u User) Wire() UserWire {
	w := UserWire{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		Department: u.Department,
		Status:     u.Status,
		LastLogin:  u.LastLogin,
		JoinDate:   u.JoinDate,
		Avatar:     u.Avatar,
		Location:   u.Location,
	}
	switch p := u.Profile.(type) {
	case StaffAssignment:
		w.Kind = ProfileStaff
		w.AssignedBarangay = p.AssignedBarangay
	case ParentLink:
		w.Kind = ProfileParent
		w.ChildrenLinked = append([]string(nil), p.ChildrenLinked...)
	}
	return w
}

// User rebuilds the tagged account from its wire form.
func (w UserWire) User() (User, error) {
	u := User{
		ID:         w.ID,
		Name:       w.Name,
		Email:      w.Email,
		Phone:      w.Phone,
		Role:       w.Role,
		Department: w.Department,
		Status:     w.Status,
		LastLogin:  w.LastLogin,
		JoinDate:   w.JoinDate,
		Avatar:     w.Avatar,
		Location:   w.Location,
	}
	switch w.Kind {
	case "":
	case ProfileStaff:
		u.Profile = StaffAssignment{AssignedBarangay: w.AssignedBarangay}
	case ProfileParent:
		u.Profile = ParentLink{ChildrenLinked: append([]string(nil), w.ChildrenLinked...)}
	default:
		return User{}, fmt.Errorf("user %s: unknown profile kind %q", w.ID, w.Kind)
	}
	return u, nil
}

// MarshalJSON encodes the flattened wire form.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Wire())
}

// UnmarshalJSON decodes the flattened wire form.
func (u *User) UnmarshalJSON(data []byte) error {
	var w UserWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := w.User()
	if err != nil {
		return err
	}
	*u = decoded
	return nil
}
