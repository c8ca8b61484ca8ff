package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid scan configuration")

	// ErrDegenerateFootprint is matched by every *GeometryWarning.
	ErrDegenerateFootprint = errors.New("degenerate sonar footprint")
)

// ConfigurationError reports a construction or course input that violates the engine's
// invariants. It is fatal for the value being validated.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// GeometryWarning reports a zero-area sensor triangle. The field of view is empty
// for that step and scanning continues.
type GeometryWarning struct {
	Step     int
	Triangle Triangle
}

func (w *GeometryWarning) Error() string {
	return fmt.Sprintf("%s at step %d: A=%v B=%v C=%v", ErrDegenerateFootprint, w.Step, w.Triangle.A, w.Triangle.B, w.Triangle.C)
}

func (w *GeometryWarning) Unwrap() error {
	return ErrDegenerateFootprint
}
