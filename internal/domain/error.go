package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")

	// Repository plumbing
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Upstream SIM inventory
	ErrUpstream    = errors.New("sim inventory upstream failure")
	ErrRateLimited = errors.New("sim inventory rate limit exceeded")
)
