package devo

import "errors"

// Sentinel errors for the failure modes callers are expected to branch on.
// Wrap with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrSourceUnavailable means the document source could not be listed or
	// read. Fatal to ingestion, non-fatal to application startup.
	ErrSourceUnavailable = errors.New("document source unavailable")

	// ErrEmptyCorpus means the document source listing was empty.
	ErrEmptyCorpus = errors.New("corpus source is empty")

	// ErrNoVerseAvailable means both delivery branches were exhausted.
	// The scheduled worker treats this as a retry signal.
	ErrNoVerseAvailable = errors.New("no verse available")

	// ErrNotFound means a lookup by id returned no row. Recoverable.
	ErrNotFound = errors.New("not found")
)
