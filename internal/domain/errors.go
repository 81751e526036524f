package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable indicates the backing store is not reachable or not
	// configured; callers may degrade rather than fail.
	ErrUnavailable = errors.New("store unavailable")
)
