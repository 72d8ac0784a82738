package domain

import "context"

// Snapshot is the serialized content of every record store, one bucket per
// record kind. Bucket slices preserve store order.
type Snapshot struct {
	Patients     []Patient     `json:"patients"`
	Users        []User        `json:"users"`
	Vaccines     []VaccineLot  `json:"vaccines"`
	Activities   []Activity    `json:"activities"`
	Children     []Child       `json:"children"`
	Vaccinations []Vaccination `json:"vaccinations"`
}

// Empty reports whether the snapshot holds no records at all.
func (s Snapshot) Empty() bool {
	return len(s.Patients) == 0 && len(s.Users) == 0 && len(s.Vaccines) == 0 &&
		len(s.Activities) == 0 && len(s.Children) == 0 && len(s.Vaccinations) == 0
}

// PersistentStore is a minimal abstraction over durable snapshot backends.
type PersistentStore interface {
	// Load returns the stored snapshot. An empty snapshot and nil error mean
	// the backend holds nothing yet.
	Load(ctx context.Context) (Snapshot, error)
	// Save replaces the stored snapshot atomically.
	Save(ctx context.Context, snapshot Snapshot) error
	Close() error
}
