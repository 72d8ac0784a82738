package records

import "immunizetrack/pkg/domain"

// Selection is a weak reference to a record by id. It carries no record data,
// so it resolves against whatever the store holds at resolution time.
type Selection struct {
	ID string `json:"id,omitempty"`
}

// Select returns a selection pointing at id.
func Select(id string) Selection { return Selection{ID: id} }

// None reports whether the selection points at nothing.
func (s Selection) None() bool { return s.ID == "" }

// Resolve returns the selected record, or false when nothing is selected or
// the id is no longer present.
func Resolve[T domain.Record](sel Selection, view View[T]) (T, bool) {
	if sel.None() {
		var zero T
		return zero, false
	}
	return view.Get(sel.ID)
}

// Normalize drops a selection whose id is absent from the view.
func Normalize[T domain.Record](sel Selection, view View[T]) Selection {
	if _, ok := Resolve(sel, view); !ok {
		return Selection{}
	}
	return sel
}
