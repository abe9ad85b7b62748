package services

import "errors"

var (
	// ErrNoFormatsSelected means the caller passed an empty format
	// selection; there is nothing a merge or extraction could match.
	ErrNoFormatsSelected = errors.New("no image formats selected")

	// ErrOperationInProgress means the engine already has a merge in
	// flight; one operation at a time per engine instance.
	ErrOperationInProgress = errors.New("operation already in progress")

	// ErrCancelled means the caller requested cancellation and the engine
	// stopped at an entry boundary.
	ErrCancelled = errors.New("operation cancelled")

	// ErrNoPages means every entry of an operation was skipped or failed,
	// so nothing survived to write.
	ErrNoPages = errors.New("no pages survived the operation")
)
