// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// RAGService is the retrieval orchestrator: it loads and chunks documents,
// builds the vector index and answers questions from retrieved context.
// The remaining services cover models, health, documents and settings.
package services
