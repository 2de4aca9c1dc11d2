package sync

import "errors"

// Connection and source errors
var (
	// ErrConnection is returned after transient connection failures have
	// exhausted their retries.
	ErrConnection = errors.New("sync: external connection failed")

	// ErrSourceUnavailable marks a source that could not be reached at all;
	// the whole run fails, not individual rows.
	ErrSourceUnavailable = errors.New("sync: external source unavailable")
)

// Reconciliation errors
var (
	// ErrValidation marks a malformed external row (missing required field,
	// unparseable value). The row is logged and skipped, not the batch.
	ErrValidation = errors.New("sync: malformed external row")

	// ErrConsistency marks a half-applied transfer: the sending warehouse
	// was decremented but the receiving increment failed. Never auto-retried;
	// manual reconciliation required.
	ErrConsistency = errors.New("sync: ledger left in inconsistent state")

	// ErrNoResumePoint means none of the recently imported batches could be
	// correlated against the external source, so an incremental pull cannot
	// resume safely. A full catch-up must be ordered explicitly by an
	// operator rather than run implicitly from zero.
	ErrNoResumePoint = errors.New("sync: no safe resume point found")

	// ErrRunInProgress means another run of the same sync type holds the
	// lease.
	ErrRunInProgress = errors.New("sync: run already in progress")
)
