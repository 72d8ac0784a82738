// Package bucket encodes a record snapshot as one JSON payload per record
// kind, the layout shared by every durable snapshot backend.
package bucket

import (
	"encoding/json"
	"fmt"

	"immunizetrack/pkg/domain"
)

// Bucket names in write order.
const (
	Patients     = "patients"
	Users        = "users"
	Vaccines     = "vaccines"
	Activities   = "activities"
	Children     = "children"
	Vaccinations = "vaccinations"
)

// Names lists every bucket in write order.
var Names = []string{Patients, Users, Vaccines, Activities, Children, Vaccinations}

// Entry is one encoded bucket.
type Entry struct {
	Name    string
	Payload []byte
}

// Encode splits snap into one JSON payload per bucket.
func Encode(snap domain.Snapshot) ([]Entry, error) {
	out := make([]Entry, 0, len(Names))
	for _, name := range Names {
		var (
			data []byte
			err  error
		)
		switch name {
		case Patients:
			data, err = json.Marshal(nonNil(snap.Patients))
		case Users:
			data, err = json.Marshal(nonNil(snap.Users))
		case Vaccines:
			data, err = json.Marshal(nonNil(snap.Vaccines))
		case Activities:
			data, err = json.Marshal(nonNil(snap.Activities))
		case Children:
			data, err = json.Marshal(nonNil(snap.Children))
		case Vaccinations:
			data, err = json.Marshal(nonNil(snap.Vaccinations))
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out = append(out, Entry{Name: name, Payload: data})
	}
	return out, nil
}

// Decode rebuilds a snapshot from stored buckets. Unknown bucket names and
// empty payloads are skipped.
func Decode(entries []Entry) (domain.Snapshot, error) {
	var snap domain.Snapshot
	for _, e := range entries {
		if len(e.Payload) == 0 {
			continue
		}
		var target any
		switch e.Name {
		case Patients:
			target = &snap.Patients
		case Users:
			target = &snap.Users
		case Vaccines:
			target = &snap.Vaccines
		case Activities:
			target = &snap.Activities
		case Children:
			target = &snap.Children
		case Vaccinations:
			target = &snap.Vaccinations
		default:
			continue
		}
		if err := json.Unmarshal(e.Payload, target); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode %s: %w", e.Name, err)
		}
	}
	return snap, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
