package chat

import "errors"

// ErrNoRAGService is returned when the view has no rag service.
var ErrNoRAGService = errors.New("rag service not available")
