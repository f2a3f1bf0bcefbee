package services

import "errors"

// Sentinel errors handlers translate into HTTP statuses. Services wrap these
// with fmt.Errorf("...: %w", ...) so errors.Is still matches.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("invalid input")
	ErrAlreadyCompleted = errors.New("challenge already completed")
	ErrUpstream         = errors.New("upstream service unavailable")
)
