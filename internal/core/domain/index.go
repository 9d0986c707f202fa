package domain

import "time"

// IndexState is the lifecycle state of the vector index.
type IndexState string

// Index lifecycle states.
const (
	// IndexStateAbsent means no documents have been indexed and nothing is persisted.
	IndexStateAbsent IndexState = "absent"

	// IndexStateBuilding means a build is in progress.
	IndexStateBuilding IndexState = "building"

	// IndexStateReady means a build completed in this process.
	IndexStateReady IndexState = "ready"

	// IndexStateLoaded means the index was reloaded from disk without re-embedding.
	IndexStateLoaded IndexState = "loaded"

	// IndexStateStale means the persisted index uses a different embedding model.
	IndexStateStale IndexState = "stale"

	// IndexStateCorrupt means the persisted index could not be decoded.
	IndexStateCorrupt IndexState = "corrupt"
)

// String returns the string representation.
func (s IndexState) String() string {
	return string(s)
}

// Serviceable returns true if searches can be answered from this state.
func (s IndexState) Serviceable() bool {
	return s == IndexStateReady || s == IndexStateLoaded
}

// IndexInfo describes the current vector index.
type IndexInfo struct {
	// State is the lifecycle state.
	State IndexState

	// Size is the number of indexed vectors.
	Size int

	// EmbeddingModel is the model the vectors were built with.
	EmbeddingModel string

	// Dimensions is the embedding length, 0 for an empty index.
	Dimensions int

	// BuiltAt is when the persisted index was written.
	BuiltAt time.Time
}

// Stats is a cheap, read-only summary of the pipeline.
type Stats struct {
	Initialized      bool     `json:"initialized" yaml:"initialized"`
	DocumentsCount   int      `json:"documents_count" yaml:"documents_count"`
	Documents        []string `json:"documents" yaml:"documents"`
	ChunksCount      int      `json:"chunks_count" yaml:"chunks_count"`
	VectorstoreReady bool     `json:"vectorstore_ready" yaml:"vectorstore_ready"`
	IndexState       string   `json:"index_state" yaml:"index_state"`
	EmbeddingModel   string   `json:"embedding_model,omitempty" yaml:"embedding_model,omitempty"`
	Warnings         []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Health status values.
const (
	HealthStatusHealthy  = "healthy"
	HealthStatusDegraded = "degraded"
)

// Health reports backend reachability and index readiness.
type Health struct {
	Status             string `json:"status" yaml:"status"`
	LLMConnected       bool   `json:"llm_connected" yaml:"llm_connected"`
	EmbeddingConnected bool   `json:"embedding_connected" yaml:"embedding_connected"`
	VectorstoreReady   bool   `json:"vectorstore_ready" yaml:"vectorstore_ready"`
	DocumentsLoaded    int    `json:"documents_loaded" yaml:"documents_loaded"`
}

// ModelInfo describes a generation model and whether the backend has it.
type ModelInfo struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Description string `json:"description" yaml:"description"`
	IsAvailable bool   `json:"is_available" yaml:"is_available"`
}
