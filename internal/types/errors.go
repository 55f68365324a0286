package types

import "errors"

// Fault taxonomy. I/O layers convert transport and HTTP failures into these
// sentinels at the boundary; the loop and engine branch on them instead of
// propagating raw errors upward.
var (
	// ErrUnavailable marks transient faults: data could not be fetched this
	// cycle. The cycle is skipped and no state is mutated.
	ErrUnavailable = errors.New("unavailable")

	// ErrRejected marks a failed order attempt. The ledger is unchanged and
	// the next cycle re-evaluates from scratch.
	ErrRejected = errors.New("order rejected")

	// ErrNotFound marks an instrument lookup with no exact ticker match.
	ErrNotFound = errors.New("instrument not found")
)
