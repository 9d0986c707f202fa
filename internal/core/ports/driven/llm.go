package driven

import (
	"context"
	"fmt"
	"iter"
)

// LLMService generates answers from a prompt and optional context.
//
// Implementations include Ollama (local models) and OpenAI-compatible APIs.
type LLMService interface {
	// Generate produces a complete answer.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// GenerateStream produces the answer as a lazy sequence of fragments.
	// No request is sent until the sequence is iterated. The backend stream
	// is closed when the consumer stops iterating or ctx is cancelled.
	GenerateStream(ctx context.Context, req GenerateRequest) iter.Seq2[string, error]

	// ListModels returns the names of models the backend can serve.
	ListModels(ctx context.Context) ([]string, error)

	// PullModel asks the backend to download a model.
	PullModel(ctx context.Context, name string) error

	// ModelName returns the default generation model.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateRequest describes one generation call.
type GenerateRequest struct {
	// Model overrides the default model when non-empty.
	Model string

	// Prompt is the user question.
	Prompt string

	// Context is retrieved text the answer must be based on.
	// When empty the prompt is sent as is.
	Context string

	// SystemPrompt is sent as the system message when non-empty.
	SystemPrompt string

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Zero uses the adapter's configured temperature.
	Temperature float64
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// contextPromptTemplate wraps a question with retrieved context.
const contextPromptTemplate = "Based on the following context, answer the question.\n\nContext:\n%s\n\nQuestion: %s\n\nAnswer:"

// Messages builds the chat messages for a request.
// Adapters share this so every backend sees the same prompt layout.
func (r GenerateRequest) Messages() []ChatMessage {
	messages := make([]ChatMessage, 0, 2)
	if r.SystemPrompt != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: r.SystemPrompt})
	}
	prompt := r.Prompt
	if r.Context != "" {
		prompt = fmt.Sprintf(contextPromptTemplate, r.Context, r.Prompt)
	}
	return append(messages, ChatMessage{Role: "user", Content: prompt})
}
