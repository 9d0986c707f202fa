package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
	"github.com/custodia-labs/resumerag/internal/logger"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// HealthPingTimeout bounds each backend ping.
const HealthPingTimeout = 5 * time.Second

// HealthService reports whether the backends answer and the index is ready.
type HealthService struct {
	llm       driven.LLMService
	embedding driven.EmbeddingService
	rag       driving.RAGService
}

// NewHealthService creates a health service. Nil backends count as unreachable.
func NewHealthService(llm driven.LLMService, embedding driven.EmbeddingService, rag driving.RAGService) *HealthService {
	return &HealthService{llm: llm, embedding: embedding, rag: rag}
}

// Check pings both backends concurrently. The status is healthy when the
// generation backend answers.
func (s *HealthService) Check(ctx context.Context) domain.Health {
	var (
		wg                 sync.WaitGroup
		llmOK, embeddingOK bool
	)

	if s.llm != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			llmOK = ping(ctx, "generation", s.llm.Ping)
		}()
	}
	if s.embedding != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			embeddingOK = ping(ctx, "embedding", s.embedding.Ping)
		}()
	}
	wg.Wait()

	health := domain.Health{
		Status:             domain.HealthStatusDegraded,
		LLMConnected:       llmOK,
		EmbeddingConnected: embeddingOK,
	}
	if llmOK {
		health.Status = domain.HealthStatusHealthy
	}
	if s.rag != nil {
		stats := s.rag.Stats(ctx)
		health.VectorstoreReady = stats.VectorstoreReady
		health.DocumentsLoaded = stats.DocumentsCount
	}
	return health
}

func ping(ctx context.Context, name string, fn func(context.Context) error) bool {
	ctx, cancel := context.WithTimeout(ctx, HealthPingTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		logger.Debug("%s backend ping failed: %v", name, err)
		return false
	}
	return true
}
