// Package mcp provides an MCP (Model Context Protocol) server adapter for resumerag.
// It lets AI assistants query the indexed resume through tools and resources.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

// ErrMissingRAGService is returned when the rag service is not provided.
var ErrMissingRAGService = errors.New("mcp: rag service is required")

// ErrServiceUnavailable is returned by tools whose port was not provided.
var ErrServiceUnavailable = errors.New("mcp: service not available")

// toolError adds a hint for errors a caller can act on.
func toolError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, domain.ErrBuildInProgress):
		return fmt.Errorf("%s: %w (retry when the current build finishes)", op, err)
	case errors.Is(err, domain.ErrBackendUnreachable),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		return fmt.Errorf("%s: %w (check that the model backend is running)", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
