package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrRateLimited indicates the directory API asked us to slow down
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrReferential indicates a link references a missing podcast or category
	ErrReferential = errors.New("referential integrity violation")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)
