package model

import (
	"errors"
	"fmt"
)

// Constraint names carried by ValidationError.
const (
	ConstraintLength     = "length_mismatch"
	ConstraintEmpty      = "empty_series"
	ConstraintTimeStep   = "time_step"
	ConstraintTimestamps = "timestamp_alignment"
	ConstraintOrder      = "timestamp_order"
	ConstraintGap        = "timestamp_gap"
	ConstraintValue      = "power_value"
	ConstraintCapacity   = "capacity"
	ConstraintSoCBounds  = "soc_bounds"
	ConstraintInitialSoC = "initial_soc"
)

// ErrValidation matches every *ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrEmptySeries is returned when statistics are requested over no samples.
var ErrEmptySeries = errors.New("empty series")

// ValidationError reports which input precondition was violated.
type ValidationError struct {
	Constraint string
	Detail     string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "invalid input: " + e.Constraint
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Constraint, e.Detail)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError for the given constraint.
func Invalid(constraint, format string, args ...any) error {
	return &ValidationError{Constraint: constraint, Detail: fmt.Sprintf(format, args...)}
}

// ConstraintOf returns the violated constraint name, or "" when err is not a
// validation error.
func ConstraintOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Constraint
	}
	return ""
}
