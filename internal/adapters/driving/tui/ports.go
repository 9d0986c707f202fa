// Package tui provides an interactive terminal chat for resumerag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// RAG answers questions and rebuilds the index.
	RAG driving.RAGService

	// Documents manages resume files.
	Documents driving.DocumentService

	// Settings reads and changes settings.
	Settings driving.SettingsService

	// Models supplies the default generation model.
	Models driving.ModelService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	return nil
}
