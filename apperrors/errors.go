// Package apperrors defines the error kinds the service layer reports.
// Wrap one of the sentinels with fmt.Errorf("...: %w", ...) and test with
// errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: a referenced client, building, inspection, invoice or
	// complaint does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput: missing required fields, negative amounts, bad dates.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStateConflict: the record is not in a state that allows the
	// operation, e.g. completing an inspection twice.
	ErrStateConflict = errors.New("state conflict")
)

func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

func StateConflict(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrStateConflict)
}

// Kind returns the sentinel err wraps, or nil for unclassified errors.
func Kind(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrInvalidInput):
		return ErrInvalidInput
	case errors.Is(err, ErrStateConflict):
		return ErrStateConflict
	}
	return nil
}
