package errors

import (
	"errors"
	"fmt"
)

// PersistenceError is returned when a book row cannot be written, most often
// because a required column is empty.
type PersistenceError struct {
	Field string
	Err   error
}

func (e *PersistenceError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("cannot persist book: missing %s", e.Field)
	}
	return fmt.Sprintf("cannot persist book: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewMissingFieldError creates a PersistenceError for an empty required field.
func NewMissingFieldError(field string) *PersistenceError {
	return &PersistenceError{Field: field}
}

// NewPersistenceError wraps a storage failure.
func NewPersistenceError(err error) *PersistenceError {
	return &PersistenceError{Err: err}
}

// IsPersistenceError reports whether err is a PersistenceError (even when wrapped).
func IsPersistenceError(err error) bool {
	var pErr *PersistenceError
	return errors.As(err, &pErr)
}
