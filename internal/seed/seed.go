// Package seed holds the static record definitions the stores are built from
// at startup.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"immunizetrack/pkg/domain"
)

//go:embed data/dashboard.yaml
var dashboardYAML []byte

type document struct {
	Patients     []domain.Patient     `yaml:"patients"`
	Users        []domain.UserWire    `yaml:"users"`
	Vaccines     []domain.VaccineLot  `yaml:"vaccines"`
	Activities   []domain.Activity    `yaml:"activities"`
	Children     []domain.Child       `yaml:"children"`
	Vaccinations []domain.Vaccination `yaml:"vaccinations"`
}

// Default returns the built-in dashboard records.
func Default() (domain.Snapshot, error) {
	return Decode(bytes.NewReader(dashboardYAML))
}

// MustDefault is Default for callers that cannot recover from a broken
// embedded definition.
func MustDefault() domain.Snapshot {
	snap, err := Default()
	if err != nil {
		panic(err)
	}
	return snap
}

// LoadFile reads record definitions from a YAML file on disk.
func LoadFile(path string) (domain.Snapshot, error) {
	f, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("open seed %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode parses YAML record definitions.
func Decode(r io.Reader) (domain.Snapshot, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return domain.Snapshot{}, fmt.Errorf("decode seed: %w", err)
	}
	users := make([]domain.User, 0, len(doc.Users))
	for _, w := range doc.Users {
		u, err := w.User()
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode seed: %w", err)
		}
		users = append(users, u)
	}
	return domain.Snapshot{
		Patients:     doc.Patients,
		Users:        users,
		Vaccines:     doc.Vaccines,
		Activities:   doc.Activities,
		Children:     doc.Children,
		Vaccinations: doc.Vaccinations,
	}, nil
}
