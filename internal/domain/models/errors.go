package models

import "errors"

// Error classes of a pipeline pass. Wrap with fmt.Errorf("%w: ...") and test
// with errors.Is.
var (
	// ErrConfig means the run cannot start: missing credentials or bad settings.
	ErrConfig = errors.New("configuration error")
	// ErrFetch covers provider authentication, transport and timeout failures.
	ErrFetch = errors.New("fetch failed")
	// ErrPersist means an output file could not be written.
	ErrPersist = errors.New("persist failed")
	// ErrPassLocked means another process holds the pass lease.
	ErrPassLocked = errors.New("pass already running")
	// ErrNoSnapshot means no pass has completed yet.
	ErrNoSnapshot = errors.New("no snapshot yet")
)
