package errors

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned when a fixed lookup table lacks a required key.
// It always halts a batch.
type ConfigurationError struct {
	Table string
	Key   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no entry for %q in %s table", e.Key, e.Table)
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(table, key string) *ConfigurationError {
	return &ConfigurationError{Table: table, Key: key}
}

// IsConfigurationError reports whether err is a ConfigurationError (even when wrapped).
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
