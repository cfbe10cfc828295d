package contracts

import "errors"

// Error taxonomy shared by every stage
var (
	// ErrNoData marks missing, short or malformed upstream data. Always recovered locally.
	ErrNoData = errors.New("no data")

	// ErrInsufficientBars marks an indicator that cannot be computed from the bars given.
	ErrInsufficientBars = errors.New("insufficient bars")

	// ErrStateUnavailable marks a failed read or write against the state store.
	ErrStateUnavailable = errors.New("state store unavailable")

	// ErrNotFound marks a missing state key.
	ErrNotFound = errors.New("not found")
)
