package domain

import "errors"

var (
	// ErrUnauthorized means no principal was resolved for the request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput wraps field validation failures.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrNoRowMatched means an owner-scoped update or delete touched zero rows.
	ErrNoRowMatched = errors.New("no project matched id for this user")
	// ErrNotFound is returned by storage lookups; the service turns it into an empty result.
	ErrNotFound = errors.New("project not found")
)
