package domain

import "errors"

var (
	// ErrCodeAlreadyExists is returned when a custom code is held by a live link.
	ErrCodeAlreadyExists = errors.New("custom code already exists")
	// ErrNotFound covers both unknown and expired codes.
	ErrNotFound = errors.New("link not found")
	// ErrGenerationExhausted means the generated-code retry loop gave up.
	ErrGenerationExhausted = errors.New("code generation exhausted")
	ErrInvalidInput        = errors.New("invalid input")
)

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err indicates a code collision.
func IsConflict(err error) bool { return errors.Is(err, ErrCodeAlreadyExists) }
