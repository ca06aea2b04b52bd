package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested partition or file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrParse indicates a persisted knowledge base file holds
	// malformed JSON. Parse failures are never auto-repaired.
	ErrParse = errors.New("malformed knowledge base file")

	// ErrInvalidEntry indicates a candidate record is missing a
	// required field. The record is skipped, the batch continues.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates extraction was requested for an
	// unhandled file extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrAlreadyImported indicates a source file was ingested before.
	// Re-ingestion requires an explicit force.
	ErrAlreadyImported = errors.New("document already imported")
)
