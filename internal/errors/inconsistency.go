package errors

import (
	"errors"
	"fmt"
	"strings"
)

// InconsistencyError is returned when a source answers an ISBN request with a
// record whose own identifiers do not include the requested ISBN.
type InconsistencyError struct {
	Source    string
	Requested string
	Echoed    []string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: isbn request != isbn response: %s not in [%s]",
		e.Source, e.Requested, strings.Join(e.Echoed, ", "))
}

// NewInconsistencyError creates an InconsistencyError.
func NewInconsistencyError(source, requested string, echoed []string) *InconsistencyError {
	return &InconsistencyError{Source: source, Requested: requested, Echoed: echoed}
}

// IsInconsistencyError reports whether err is an InconsistencyError (even when wrapped).
func IsInconsistencyError(err error) bool {
	var incErr *InconsistencyError
	return errors.As(err, &incErr)
}
