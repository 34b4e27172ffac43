package errors

import "errors"

// Common application errors shared across services and handlers.
var (
	// ErrNotFound is returned when a record or resource does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for authentication failures (bad credentials, invalid token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the user lacks permission for the action.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for invalid input data.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned for state conflicts (duplicate email, identification, reference slot).
	ErrConflict = errors.New("resource state conflict")

	// ErrUnavailable is returned when a backing store cannot be reached; callers may retry.
	ErrUnavailable = errors.New("service unavailable")
)
