package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available for a provider.
	ErrNotImplemented = errors.New("not implemented")

	// ErrConfiguration indicates an invalid configuration value.
	// Returned at construction time and never silently corrected.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedFormat indicates a document extension with no decoder.
	// Ingestion skips such files and records a warning.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrBackendUnreachable indicates the embedding or generation backend
	// could not be contacted.
	ErrBackendUnreachable = errors.New("backend unreachable")

	// ErrLLMUnavailable indicates the generation backend rejected a request.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding backend rejected a request
	// or returned an unusable vector.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Index Errors.

	// ErrIndexAbsent indicates no persisted index exists yet.
	ErrIndexAbsent = errors.New("vector index absent")

	// ErrIndexCorrupt indicates the persisted index exists but cannot be read.
	// Operators should rebuild rather than treat it as empty.
	ErrIndexCorrupt = errors.New("vector index corrupt")

	// ErrIndexStale indicates the persisted index was built with a different
	// embedding model and must be rebuilt before it can serve searches.
	ErrIndexStale = errors.New("vector index built with a different embedding model")

	// ErrBuildInProgress indicates an index build is already running.
	ErrBuildInProgress = errors.New("index build in progress")
)

// GenerationError reports a failed generation call together with the
// sources that were retrieved for it, so callers can still inspect them.
type GenerationError struct {
	// Sources are the de-duplicated source filenames used as context.
	Sources []string

	// Err is the underlying backend error.
	Err error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate answer from %d source(s): %v", len(e.Sources), e.Err)
}

// Unwrap returns the underlying backend error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}
