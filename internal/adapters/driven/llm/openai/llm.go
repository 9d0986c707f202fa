// Package openai provides an LLM service adapter using the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout for non-streaming calls (default: 120s).
	Timeout time.Duration

	// Temperature is used when a request does not set one.
	Temperature float64
}

// LLMService provides LLM operations using the OpenAI API.
type LLMService struct {
	client       *openai.Client
	streamClient *openai.Client
	model        string
	temperature  float64
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key is required", domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	// Streams are bounded by their context only.
	streamCfg := openai.DefaultConfig(cfg.APIKey)
	streamCfg.BaseURL = cfg.BaseURL
	streamCfg.HTTPClient = &http.Client{}

	return &LLMService{
		client:       openai.NewClientWithConfig(clientCfg),
		streamClient: openai.NewClientWithConfig(streamCfg),
		model:        cfg.Model,
		temperature:  cfg.Temperature,
	}, nil
}

// chatRequest builds the chat completion request for req.
func (s *LLMService) chatRequest(req driven.GenerateRequest) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = s.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = s.temperature
	}

	messages := req.Messages()
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content}
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    chatMessages,
		Temperature: float32(temperature),
	}
}

// Generate produces a complete answer.
func (s *LLMService) Generate(ctx context.Context, req driven.GenerateRequest) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, s.chatRequest(req))
	if err != nil {
		return "", classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", domain.ErrLLMUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream streams the answer. The request is sent on the first pull
// and the stream is closed as soon as iteration stops.
func (s *LLMService) GenerateStream(ctx context.Context, req driven.GenerateRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		chatReq := s.chatRequest(req)
		chatReq.Stream = true

		stream, err := s.streamClient.CreateChatCompletionStream(ctx, chatReq)
		if err != nil {
			yield("", classify(ctx, err))
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", classify(ctx, err))
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(resp.Choices[0].Delta.Content, nil) {
				return
			}
		}
	}
}

// ListModels returns the model IDs the API key can use, sorted.
func (s *LLMService) ListModels(ctx context.Context) ([]string, error) {
	list, err := s.client.ListModels(ctx)
	if err != nil {
		return nil, classify(ctx, err)
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	sort.Strings(names)
	return names, nil
}

// PullModel is not supported by hosted APIs.
func (s *LLMService) PullModel(_ context.Context, name string) error {
	return fmt.Errorf("%w: openai models cannot be pulled (%s)", domain.ErrNotImplemented, name)
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return classify(ctx, err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// classify maps client errors onto domain errors. API responses mean the
// backend was reached but refused; anything else is a transport failure.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: openai error (status %d): %s",
			domain.ErrLLMUnavailable, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: openai error (status %d): %v",
			domain.ErrLLMUnavailable, reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Errorf("%w: openai: %v", domain.ErrBackendUnreachable, err)
}
