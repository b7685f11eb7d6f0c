package place

import "errors"

// Failure kinds surfaced by the pipeline. Normalizers and the estimator
// never raise; malformed input degrades to empty output instead.
var (
	// ErrIdentityNotFound means no place id could be resolved from the
	// input. Reported before any network activity.
	ErrIdentityNotFound = errors.New("place identity not found")

	// ErrFetchFailed wraps any content-fetch failure, including timeouts
	// and non-success responses. A fetch failure aborts the run without
	// persisting.
	ErrFetchFailed = errors.New("content fetch failed")

	// ErrPersistFailed means the store write did not land after the
	// computation succeeded. Runs are idempotent, so callers may retry
	// the whole run.
	ErrPersistFailed = errors.New("persist failed")
)
