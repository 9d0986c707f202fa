package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or a compatible server.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// Default configuration values.
const (
	DefaultDocumentsDir     = "data/resume"
	DefaultIndexDir         = "vectorstore"
	DefaultChunkSize        = 500
	DefaultChunkOverlap     = 50
	DefaultTopK             = 3
	DefaultOllamaBaseURL    = "http://localhost:11434"
	DefaultEmbeddingModel   = "nomic-embed-text"
	DefaultGenerationModel  = "llama3.2"
	DefaultEmbedBatchSize   = 32
	DefaultTemperature      = 0.7
	DefaultServerAddr       = "127.0.0.1:8765"
	defaultOpenAIEmbedModel = "text-embedding-3-small"
	defaultOpenAIChatModel  = "gpt-4o-mini"
)

// ChunkingSettings controls how documents are split.
type ChunkingSettings struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters shared by adjacent chunks.
	Overlap int
}

// Validate checks that overlap is strictly smaller than size.
func (c ChunkingSettings) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrConfiguration, c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: chunk overlap (%d) must be less than chunk size (%d)",
			ErrConfiguration, c.Overlap, c.Size)
	}
	return nil
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	// Changing it invalidates any persisted index.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize is the number of texts embedded per batch.
	BatchSize int

	// RequestsPerSecond limits embedding calls, 0 means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the default generation model.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DocumentsDir is the directory holding resume files.
	DocumentsDir string

	// IndexDir is the directory holding the persisted vector index.
	IndexDir string

	// Chunking controls document splitting.
	Chunking ChunkingSettings

	// TopK is the default number of chunks retrieved per query.
	TopK int

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds generation provider settings.
	LLM LLMSettings

	// AvailableModels is the model catalogue in "name:Display Name:Description" form.
	AvailableModels []string

	// ServerAddr is the listen address for the MCP HTTP transport.
	ServerAddr string
}

// Validate checks settings that would otherwise fail later at construction.
func (s *AppSettings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if s.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrConfiguration, s.TopK)
	}
	if s.DocumentsDir == "" || s.IndexDir == "" {
		return fmt.Errorf("%w: documents and index directories are required", ErrConfiguration)
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
// Both providers default to a local Ollama instance.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		DocumentsDir: DefaultDocumentsDir,
		IndexDir:     DefaultIndexDir,
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		TopK: DefaultTopK,
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOllama,
			Model:     DefaultEmbeddingModel,
			BaseURL:   DefaultOllamaBaseURL,
			BatchSize: DefaultEmbedBatchSize,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       DefaultGenerationModel,
			BaseURL:     DefaultOllamaBaseURL,
			Temperature: DefaultTemperature,
		},
		AvailableModels: DefaultModelCatalogue(),
		ServerAddr:      DefaultServerAddr,
	}
}

// DefaultModelCatalogue returns the built-in generation model catalogue.
func DefaultModelCatalogue() []string {
	return []string{
		"llama3.2:Llama 3.2:Meta's latest lightweight model",
		"mistral:Mistral 7B:Efficient and powerful 7B model",
	}
}

// ParseModelEntry parses a "name:Display Name:Description" catalogue entry.
// Missing parts default to the name and an empty description.
func ParseModelEntry(entry string) ModelInfo {
	parts := strings.SplitN(entry, ":", 3)
	info := ModelInfo{Name: strings.TrimSpace(parts[0])}
	info.DisplayName = info.Name
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		info.DisplayName = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		info.Description = strings.TrimSpace(parts[2])
	}
	return info
}

// AllProviders returns providers that support both embeddings and generation.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: DefaultEmbeddingModel,
		AIProviderOpenAI: defaultOpenAIEmbedModel,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: DefaultGenerationModel,
		AIProviderOpenAI: defaultOpenAIChatModel,
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
