package mcp

import (
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// RAG answers and searches.
	RAG driving.RAGService

	// Models lists and pulls generation models.
	Models driving.ModelService

	// Health reports backend connectivity.
	Health driving.HealthService

	// Documents lists resume files.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	// Models, Health and Documents are optional
	return nil
}
