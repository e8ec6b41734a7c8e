package pipeline

import "errors"

var (
	// ErrInconsistentState reports a broken coordination invariant, such as a
	// worker holding a compressed frame while the write gate is exhausted.
	ErrInconsistentState = errors.New("pipeline: inconsistent state")

	// ErrInputUnavailable is returned when the input file cannot be opened.
	ErrInputUnavailable = errors.New("input unavailable")

	// ErrOutputUnavailable is returned when the output file cannot be created,
	// replaced or written.
	ErrOutputUnavailable = errors.New("output unavailable")

	// ErrOutputExists is returned when decompressing would overwrite a file
	// and overwriting was not requested.
	ErrOutputExists = errors.New("output already exists")

	// ErrMismatch is returned by Verify when the decoded stream differs from
	// the original.
	ErrMismatch = errors.New("content mismatch")

	// ErrInvalidOptions is returned for option values no run can honor.
	ErrInvalidOptions = errors.New("invalid pipeline options")
)
