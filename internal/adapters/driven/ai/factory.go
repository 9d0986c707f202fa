// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/resumerag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/resumerag/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/resumerag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/resumerag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/resumerag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
	"github.com/custodia-labs/resumerag/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorIndex      driven.VectorIndex
	Warnings         []string // Backends that did not answer a ping.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates the embedding service, the generation service and the vector
// index. Unreachable backends are reported as warnings rather than errors so
// the pipeline can still start degraded; only invalid settings fail.
func Init(ctx context.Context, settings *domain.AppSettings) (*InitResult, error) {
	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		embedding.Close()
		return nil, err
	}

	index, err := sqlite.NewVectorIndex(settings.IndexDir, embedding,
		sqlite.WithBatchSize(settings.Embedding.BatchSize))
	if err != nil {
		embedding.Close()
		llm.Close()
		return nil, err
	}

	result := &InitResult{
		EmbeddingService: embedding,
		LLMService:       llm,
		VectorIndex:      index,
	}

	if err := ping(ctx, embedding.Ping); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding service unreachable: %v", err))
	}
	if err := ping(ctx, llm.Ping); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("LLM service unreachable: %v", err))
	}
	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}

	return result, nil
}

// ping runs fn bounded by pingTimeout.
func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, notConfigured("embedding", "")
	}
	if !settings.IsConfigured() {
		return nil, notConfigured("embedding", settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, notConfigured("LLM", "")
	}
	if !settings.IsConfigured() {
		return nil, notConfigured("LLM", settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}

func notConfigured(kind string, provider domain.AIProvider) error {
	switch {
	case provider == "":
		return fmt.Errorf("%w: no %s provider set", domain.ErrConfiguration, kind)
	case !provider.IsValid():
		return fmt.Errorf("%w: unknown %s provider %q", domain.ErrConfiguration, kind, provider)
	default:
		return fmt.Errorf("%w: %s provider %s requires an API key", domain.ErrConfiguration, kind, provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Dimensions:        domain.EmbeddingDimensions()[settings.Model],
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:            settings.APIKey,
		BaseURL:           openAIBaseURL(settings.BaseURL),
		Model:             settings.Model,
		RequestsPerSecond: settings.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL:     settings.BaseURL,
		Model:       settings.Model,
		Temperature: settings.Temperature,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:      settings.APIKey,
		BaseURL:     openAIBaseURL(settings.BaseURL),
		Model:       settings.Model,
		Temperature: settings.Temperature,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// openAIBaseURL drops the Ollama default, which is the configured base URL
// when only the provider was switched.
func openAIBaseURL(baseURL string) string {
	if baseURL == domain.DefaultOllamaBaseURL {
		return ""
	}
	return baseURL
}
