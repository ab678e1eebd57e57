package config

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates a config file extension with no loader.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// ValidationError describes a configuration value that is out of range.
type ValidationError struct {
	// Field is the dotted path of the offending setting.
	Field string
	// Value is the invalid value.
	Value any
	// Message describes the constraint that was violated.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Field, e.Message, e.Value)
}
