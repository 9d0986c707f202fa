package driving

import (
	"context"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

// RAGService answers resume questions with retrieval-augmented generation.
type RAGService interface {
	// Initialize loads a persisted index, or builds one when documents exist.
	// Failures leave the service usable in a degraded state.
	Initialize(ctx context.Context) error

	// IndexDocuments rebuilds the index from the documents directory and
	// returns the number of chunks indexed. Zero documents is not an error.
	IndexDocuments(ctx context.Context) (int, error)

	// Search returns the chunks most relevant to question.
	// k <= 0 uses the configured default.
	Search(ctx context.Context, question string, k int) ([]domain.SearchHit, error)

	// Query answers question from retrieved context.
	// An empty model uses the default generation model.
	Query(ctx context.Context, question, model string, k int) (*domain.Answer, error)

	// QueryStream retrieves context, then returns an answer whose fragments
	// are generated lazily as the caller iterates.
	QueryStream(ctx context.Context, question, model string, k int) (*domain.AnswerStream, error)

	// Stats returns a read-only summary. It never triggers a build.
	Stats(ctx context.Context) domain.Stats
}
