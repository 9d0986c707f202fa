package tui

import "errors"

// ErrMissingRAGService is returned when the rag service is not provided.
var ErrMissingRAGService = errors.New("tui: rag service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
