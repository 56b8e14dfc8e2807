package blockgrid

import (
	"errors"
	"fmt"
)

// ErrConfig matches any ConfigError via errors.Is.
var ErrConfig = errors.New("invalid configuration")

// ErrCapacity matches any CapacityError via errors.Is.
var ErrCapacity = errors.New("lattice too large")

// ConfigError reports a region, spacing or policy value the engine cannot run with.
type ConfigError struct {
	Field  string // "region", "inc", "addressing", ...
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// CapacityError reports a lattice whose cell count does not fit the arena.
// Dimensions are kept as float64 because they may exceed int.
type CapacityError struct {
	NX, NY float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("grid size too large: %.0f columns by %.0f rows overflows cell storage", e.NX, e.NY)
}

// Is reports whether target is ErrCapacity.
func (e *CapacityError) Is(target error) bool { return target == ErrCapacity }
