package driven

import (
	"context"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

// VectorIndex owns persisted chunk embeddings and answers similarity queries.
//
// Implementations embed through an EmbeddingService supplied at construction,
// so Build and Search take text rather than vectors.
type VectorIndex interface {
	// Exists reports whether a persisted index artifact is present.
	Exists() bool

	// Load reconstructs the index from persisted storage without re-embedding.
	// Returns domain.ErrIndexAbsent, domain.ErrIndexCorrupt or domain.ErrIndexStale.
	Load(ctx context.Context) (domain.IndexInfo, error)

	// Build embeds all chunks and replaces any previous index.
	// Only one build may run at a time; others fail with domain.ErrBuildInProgress.
	// Empty input yields an empty but ready index.
	Build(ctx context.Context, chunks []domain.Chunk) (domain.IndexInfo, error)

	// Search returns the k chunks most similar to query, best first.
	// An absent or empty index returns an empty result, not an error.
	Search(ctx context.Context, query string, k int) ([]domain.SearchHit, error)

	// Size returns the number of indexed vectors.
	Size() int

	// Info describes the current index.
	Info() domain.IndexInfo

	// Close releases resources.
	Close() error
}
