package domain

import "fmt"

// DuplicateIDError is returned when a store is built from records sharing a
// primary key. It is fatal at load time; the input data must be fixed.
type DuplicateIDError struct {
	Kind EntityType
	ID   string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("%s store: duplicate id %q", e.Kind, e.ID)
}

// UnknownCategoryError is returned by strict presentation lookups when a tag
// has no configured style.
type UnknownCategoryError struct {
	Table string
	Tag   CategoryTag
}

func (e UnknownCategoryError) Error() string {
	return fmt.Sprintf("%s: unknown category %q", e.Table, e.Tag)
}

// ErrNotFound is returned when a lookup by id misses.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
