package service

import "errors"

var (
	// ErrNotFound is returned when no hero has the requested id, or the hero
	// has no image.
	ErrNotFound = errors.New("hero not found")
	// ErrDuplicateKey is returned when another hero already uses the name.
	ErrDuplicateKey = errors.New("an existing record with the same name was already found")
	// ErrNotPersisted is returned by Create when the primary commit failed and
	// the hero never received an id.
	ErrNotPersisted = errors.New("hero was not persisted")
)

// ValidationError wraps field errors of a hero payload.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid hero: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }
