package search

import "errors"

var (
	// ErrInvalidPattern wraps pattern compilation failures.
	ErrInvalidPattern = errors.New("invalid search pattern")

	// ErrInvalidSearchType is returned for an unrecognized strategy.
	ErrInvalidSearchType = errors.New("unsupported search type")

	// ErrSemanticUnavailable is returned when a semantic query runs on an
	// engine with no scorer configured. Callers can fall back to sentence
	// search on this error.
	ErrSemanticUnavailable = errors.New("semantic search requires a scorer")

	// ErrNoWordTimestamps is returned when fragment or mash search runs
	// against a corpus in which no transcript carries word-level timing.
	// Individual transcripts without word timing are silently skipped.
	ErrNoWordTimestamps = errors.New("no word-level timestamps in any transcript")
)
