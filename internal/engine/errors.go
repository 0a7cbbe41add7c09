package engine

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation, auth and conflict errors short-circuit
// before any mutation; infrastructure errors are logged without losing
// the in-memory state.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrConflict   = errors.New("conflict")
	ErrClosed     = errors.New("engine closed")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func authf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuth, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
