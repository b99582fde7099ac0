package domain

import (
	"errors"
	"fmt"
)

// Mechanism resolution failures. Callers match them with errors.Is; the core
// never retries or substitutes a default when one of these is returned.
var (
	// ErrInvalidInput is returned when an angle or magnitude is NaN or ±Inf.
	ErrInvalidInput = errors.New("mechanism: invalid input (NaN or Inf)")

	// ErrArithmeticOverflow is returned when the scalar moment or a tensor
	// component exceeds the representable float64 range.
	ErrArithmeticOverflow = errors.New("mechanism: arithmetic overflow")

	// ErrDegenerateTensor is returned when the tensor has no distinguishable
	// principal-axis ordering (zero moment or isotropic).
	ErrDegenerateTensor = errors.New("mechanism: degenerate tensor")

	// ErrNumericalInstability is returned when the eigen-decomposition fails to
	// converge or produces a basis that is not orthonormal.
	ErrNumericalInstability = errors.New("mechanism: eigen decomposition did not converge")
)

// Notification handling outcomes.
var (
	// ErrSkipped marks a notification the service deliberately does not
	// process (deletes, non-origin product types). The pipeline commits it
	// without counting a failure.
	ErrSkipped = errors.New("notification skipped")

	// ErrInvalidNotification is returned when a notification lacks the
	// fields needed to identify the event.
	ErrInvalidNotification = errors.New("invalid product notification")
)

// MechanismError records which stage of mechanism resolution failed.
type MechanismError struct {
	Stage string // "build", "decompose"
	Err   error
}

func (e *MechanismError) Error() string {
	return fmt.Sprintf("%s tensor: %v", e.Stage, e.Err)
}

func (e *MechanismError) Unwrap() error {
	return e.Err
}

// ErrorKind maps a mechanism failure onto a short label for metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrArithmeticOverflow):
		return "overflow"
	case errors.Is(err, ErrDegenerateTensor):
		return "degenerate"
	case errors.Is(err, ErrNumericalInstability):
		return "instability"
	default:
		return "other"
	}
}
