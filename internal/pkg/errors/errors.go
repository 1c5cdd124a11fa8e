package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict reports a lost optimistic-concurrency race.
	ErrConflict = errors.New("conflict")
	// ErrUpstreamUnavailable reports an unusable completion result. It is masked by the mentor fallback.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
