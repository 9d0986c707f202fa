package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
	"github.com/custodia-labs/resumerag/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// ContextSeparator joins retrieved chunk texts into one context block.
const ContextSeparator = "\n\n---\n\n"

// RAGConfig holds retrieval defaults.
type RAGConfig struct {
	// TopK is the number of chunks retrieved when a caller passes k <= 0.
	TopK int

	// DefaultModel is the generation model used when a caller passes none.
	DefaultModel string
}

// RAGService answers questions about the indexed resume documents.
type RAGService struct {
	documents driven.DocumentStore
	chunker   driven.Chunker
	index     driven.VectorIndex
	llm       driven.LLMService
	prompts   driven.PromptStore
	cfg       RAGConfig

	initialized atomic.Bool

	mu       sync.RWMutex
	warnings []string
}

// NewRAGService creates the retrieval orchestrator.
// An empty DefaultModel falls back to the generation service's model.
func NewRAGService(
	documents driven.DocumentStore,
	chunker driven.Chunker,
	index driven.VectorIndex,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cfg RAGConfig,
) (*RAGService, error) {
	if documents == nil || chunker == nil || index == nil || llm == nil || prompts == nil {
		return nil, fmt.Errorf("%w: rag service requires documents, chunker, index, llm and prompts",
			domain.ErrConfiguration)
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrConfiguration, cfg.TopK)
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = llm.ModelName()
	}

	return &RAGService{
		documents: documents,
		chunker:   chunker,
		index:     index,
		llm:       llm,
		prompts:   prompts,
		cfg:       cfg,
	}, nil
}

// Initialize loads the persisted index, rebuilding it when it is corrupt or
// was built with another embedding model. Without an index it builds one if
// documents exist. A loaded index whose documents have all been removed is
// emptied. The service is marked initialised whatever the outcome.
func (s *RAGService) Initialize(ctx context.Context) error {
	logger.Section("Initialise")
	defer s.initialized.Store(true)

	if s.index.Exists() {
		info, err := s.index.Load(ctx)
		switch {
		case err == nil:
			logger.Info("Loaded index: %d vectors (%s)", info.Size, info.EmbeddingModel)
			if info.Size > 0 && s.documents.Count() == 0 {
				return s.clearIndex(ctx)
			}
			return nil
		case errors.Is(err, domain.ErrIndexCorrupt), errors.Is(err, domain.ErrIndexStale),
			errors.Is(err, domain.ErrIndexAbsent):
			if s.documents.Count() == 0 {
				logger.Warn("Persisted index unusable and no documents to rebuild from: %v", err)
				return err
			}
			logger.Warn("Persisted index unusable, rebuilding: %v", err)
		default:
			logger.Error("Load index: %v", err)
			return fmt.Errorf("load index: %w", err)
		}
	}

	if s.documents.Count() == 0 {
		logger.Info("No documents in %s, index stays empty", s.documents.Root())
		return nil
	}

	n, err := s.IndexDocuments(ctx)
	if err != nil {
		logger.Error("Initial index build failed: %v", err)
		return err
	}
	logger.Info("Indexed %d chunks", n)
	return nil
}

// IndexDocuments rebuilds the index from the documents directory.
// With nothing to index it returns 0 and empties an index that still holds
// vectors, so removed documents stop answering questions.
func (s *RAGService) IndexDocuments(ctx context.Context) (int, error) {
	logger.Section("Index Documents")

	result, err := s.documents.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load documents: %w", err)
	}

	warnings := result.Warnings()
	for _, w := range warnings {
		logger.Warn("Skipped %s", w)
	}
	s.setWarnings(warnings)

	chunks := s.chunker.Split(result.Documents)
	logger.Debug("Loaded %d document(s), split into %d chunk(s) (size=%d overlap=%d)",
		len(result.Documents), len(chunks), s.chunker.ChunkSize(), s.chunker.Overlap())
	if len(chunks) == 0 {
		if s.index.Size() == 0 {
			return 0, nil
		}
		return 0, s.clearIndex(ctx)
	}

	start := time.Now()
	info, err := s.index.Build(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}
	logger.Info("Built index with %d vectors in %s", info.Size, time.Since(start).Round(time.Millisecond))
	return info.Size, nil
}

// Search returns the chunks most relevant to question.
func (s *RAGService) Search(ctx context.Context, question string, k int) ([]domain.SearchHit, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return []domain.SearchHit{}, nil
	}
	if k <= 0 {
		k = s.cfg.TopK
	}

	hits, err := s.index.Search(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Search %q (k=%d): %d hit(s)", question, k, len(hits))
	return hits, nil
}

// Query answers question from the retrieved context. With no context the
// canned answer is returned and the generation backend is not called.
func (s *RAGService) Query(ctx context.Context, question, model string, k int) (*domain.Answer, error) {
	logger.Section("Query")

	retrieved, err := s.retrieve(ctx, question, model, k)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{
		Model:     retrieved.model,
		Sources:   retrieved.sources,
		Hits:      retrieved.hits,
		Grounded:  retrieved.grounded(),
		Warning:   retrieved.warning,
		CreatedAt: time.Now(),
	}

	if !answer.Grounded {
		answer.Text, err = s.prompts.Load(driven.PromptNoContext)
		if err != nil {
			return nil, fmt.Errorf("load prompt %s: %w", driven.PromptNoContext, err)
		}
		return answer, nil
	}

	req, err := s.generateRequest(question, retrieved)
	if err != nil {
		return nil, err
	}
	answer.Text, err = s.llm.Generate(ctx, req)
	if err != nil {
		return nil, &domain.GenerationError{Sources: retrieved.sources, Err: err}
	}
	return answer, nil
}

// QueryStream retrieves context now and generates the answer lazily.
// Generation errors reach the consumer as *domain.GenerationError.
func (s *RAGService) QueryStream(ctx context.Context, question, model string, k int) (*domain.AnswerStream, error) {
	logger.Section("Query Stream")

	retrieved, err := s.retrieve(ctx, question, model, k)
	if err != nil {
		return nil, err
	}

	stream := &domain.AnswerStream{
		Model:    retrieved.model,
		Sources:  retrieved.sources,
		Hits:     retrieved.hits,
		Grounded: retrieved.grounded(),
		Warning:  retrieved.warning,
	}

	if !stream.Grounded {
		canned, err := s.prompts.Load(driven.PromptNoContext)
		if err != nil {
			return nil, fmt.Errorf("load prompt %s: %w", driven.PromptNoContext, err)
		}
		stream.Fragments = func(yield func(string, error) bool) {
			yield(canned, nil)
		}
		return stream, nil
	}

	req, err := s.generateRequest(question, retrieved)
	if err != nil {
		return nil, err
	}
	fragments := s.llm.GenerateStream(ctx, req)
	sources := retrieved.sources
	stream.Fragments = func(yield func(string, error) bool) {
		for fragment, err := range fragments {
			if err != nil {
				yield("", &domain.GenerationError{Sources: sources, Err: err})
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
	return stream, nil
}

// Stats summarises documents and index state. It never builds.
func (s *RAGService) Stats(_ context.Context) domain.Stats {
	info := s.index.Info()
	documents := s.documents.List()
	if documents == nil {
		documents = []string{}
	}

	s.mu.RLock()
	warnings := append([]string(nil), s.warnings...)
	s.mu.RUnlock()

	return domain.Stats{
		Initialized:      s.initialized.Load(),
		DocumentsCount:   len(documents),
		Documents:        documents,
		ChunksCount:      s.index.Size(),
		VectorstoreReady: info.State.Serviceable(),
		IndexState:       info.State.String(),
		EmbeddingModel:   info.EmbeddingModel,
		Warnings:         warnings,
	}
}

// DefaultModel returns the model used when a query names none.
func (s *RAGService) DefaultModel() string {
	return s.cfg.DefaultModel
}

// retrieval is the outcome of the retrieval half of a query.
type retrieval struct {
	model   string
	hits    []domain.SearchHit
	context string
	sources []string
	warning string
}

func (r *retrieval) grounded() bool {
	return r.context != ""
}

func (s *RAGService) retrieve(ctx context.Context, question, model string, k int) (*retrieval, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", domain.ErrInvalidInput)
	}
	if model == "" {
		model = s.cfg.DefaultModel
	}

	hits, err := s.Search(ctx, question, k)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		if strings.TrimSpace(h.Chunk.Text) != "" {
			texts = append(texts, h.Chunk.Text)
		}
	}

	r := &retrieval{
		model:   model,
		hits:    hits,
		context: strings.Join(texts, ContextSeparator),
		sources: []string{},
	}
	if r.grounded() {
		r.sources = domain.UniqueSources(hits)
	} else {
		r.warning = indexWarning(s.index.Info().State)
	}
	logger.Debug("Model: %s, hits: %d, context: %d bytes, sources: %v",
		model, len(hits), len(r.context), r.sources)
	return r, nil
}

func (s *RAGService) generateRequest(question string, r *retrieval) (driven.GenerateRequest, error) {
	system, err := s.prompts.Load(driven.PromptResumeSystem)
	if err != nil {
		return driven.GenerateRequest{}, fmt.Errorf("load prompt %s: %w", driven.PromptResumeSystem, err)
	}
	return driven.GenerateRequest{
		Model:        r.model,
		Prompt:       question,
		Context:      r.context,
		SystemPrompt: system,
	}, nil
}

// clearIndex replaces the index with an empty one.
func (s *RAGService) clearIndex(ctx context.Context) error {
	if _, err := s.index.Build(ctx, nil); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	logger.Info("No documents left in %s, index cleared", s.documents.Root())
	return nil
}

// indexWarning explains a canned answer caused by an unusable index.
func indexWarning(state domain.IndexState) string {
	switch state {
	case domain.IndexStateCorrupt:
		return "the resume index is corrupt, run `resumerag index` to rebuild it"
	case domain.IndexStateStale:
		return "the resume index was built with a different embedding model, run `resumerag index` to rebuild it"
	default:
		return ""
	}
}

func (s *RAGService) setWarnings(warnings []string) {
	s.mu.Lock()
	s.warnings = warnings
	s.mu.Unlock()
}
