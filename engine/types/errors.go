package types

import "errors"

// Error taxonomy shared by all engines. Callers wrap these with fmt.Errorf
// and %w; the API layer maps them to HTTP status codes with errors.Is.
var (
	// ErrValidation indicates malformed caller input (bad traffic split,
	// out-of-range rating, unsupported export format).
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates an unknown test or entity id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates an operation attempted against a test in
	// the wrong lifecycle state.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotAssigned indicates a result was recorded for a user with no
	// variant assignment in that test.
	ErrNotAssigned = errors.New("user not assigned")
)
