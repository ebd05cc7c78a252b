package laa

import "errors"

// Error kinds returned by engine constructors and decision calls.
// Callers match them with errors.Is; returned errors carry context via %w.
var (
	// ErrInvalidConfiguration is returned when a construction parameter is
	// non-positive or not a finite number.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrLengthMismatch is returned when index-aligned inputs differ in length.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrEmptyInput is returned when an operation needs at least one element.
	ErrEmptyInput = errors.New("empty input")
)
