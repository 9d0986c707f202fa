// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Loads resume files from the documents directory
//   - Normaliser: Decodes one file format into raw documents
//   - Chunker: Splits raw documents into chunks
//   - VectorIndex: Persisted embeddings with similarity search
//   - EmbeddingService: Text to vector conversion
//   - LLMService: Text generation, blocking or streamed
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
