package errors

import (
	"errors"
	"fmt"
)

// ErrMissingIdentifier is wrapped by a MappingError when a record looked up by
// ISBN carries neither an isbn_10 nor an isbn_13 identifier.
var ErrMissingIdentifier = errors.New("missing isbn_10/isbn_13 identifier")

// MappingError is returned when a raw source record cannot be converted into
// the canonical record shape.
type MappingError struct {
	Source     string
	Identifier string
	Title      string
	Err        error
}

func (e *MappingError) Error() string {
	msg := fmt.Sprintf("%s: cannot map record", e.Source)
	if e.Identifier != "" {
		msg += fmt.Sprintf(" for %s", e.Identifier)
	}
	if e.Title != "" {
		msg += fmt.Sprintf(" (%q)", e.Title)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// NewMappingError creates a MappingError for the given source and identifier.
func NewMappingError(source, identifier, title string, err error) *MappingError {
	return &MappingError{Source: source, Identifier: identifier, Title: title, Err: err}
}

// IsMappingError reports whether err is a MappingError (even when wrapped).
func IsMappingError(err error) bool {
	var mapErr *MappingError
	return errors.As(err, &mapErr)
}

// IsMissingIdentifier reports whether err signals a record without ISBN identifiers.
func IsMissingIdentifier(err error) bool {
	return errors.Is(err, ErrMissingIdentifier)
}
