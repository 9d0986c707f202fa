// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = domain.DefaultOllamaBaseURL
	DefaultLLMModel    = domain.DefaultGenerationModel
	DefaultLLMTimeout  = 120 * time.Second
	DefaultPullTimeout = 30 * time.Minute
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout for non-streaming calls (default: 120s).
	// Streams are bounded by their context only.
	Timeout time.Duration

	// Temperature is used when a request does not set one.
	Temperature float64
}

// LLMService provides LLM operations using Ollama.
type LLMService struct {
	client       *http.Client
	streamClient *http.Client
	pullClient   *http.Client
	baseURL      string
	model        string
	temperature  float64
}

// options holds generation parameters.
type options struct {
	Temperature float64 `json:"temperature,omitempty"`
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is one /api/chat response object. Streams send one per line.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// tagsResponse is the Ollama /api/tags response format.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// pullRequest is the Ollama /api/pull request format.
type pullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

// pullResponse is the Ollama /api/pull response format.
type pullResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		streamClient: &http.Client{},
		pullClient: &http.Client{
			Timeout: DefaultPullTimeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// chatBody builds the /api/chat payload for req.
func (s *LLMService) chatBody(req driven.GenerateRequest, stream bool) chatRequest {
	model := req.Model
	if model == "" {
		model = s.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = s.temperature
	}

	messages := req.Messages()
	chatMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}

	body := chatRequest{
		Model:    model,
		Messages: chatMessages,
		Stream:   stream,
	}
	if temperature > 0 {
		body.Options = &options{Temperature: temperature}
	}
	return body
}

// Generate produces a complete answer with a single /api/chat call.
func (s *LLMService) Generate(ctx context.Context, req driven.GenerateRequest) (string, error) {
	resp, err := s.post(ctx, s.client, "/api/chat", s.chatBody(req, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrLLMUnavailable, err)
	}
	if chatResp.Error != "" {
		return "", fmt.Errorf("%w: ollama: %s", domain.ErrLLMUnavailable, chatResp.Error)
	}

	return chatResp.Message.Content, nil
}

// GenerateStream streams the answer from /api/chat, which replies with one
// JSON object per line. The request is sent on the first pull and the
// response body is closed as soon as iteration stops.
func (s *LLMService) GenerateStream(ctx context.Context, req driven.GenerateRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := s.post(ctx, s.streamClient, "/api/chat", s.chatBody(req, true))
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		dec := json.NewDecoder(resp.Body)
		for {
			var chunk chatResponse
			if err := dec.Decode(&chunk); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				if ctx.Err() != nil {
					yield("", ctx.Err())
					return
				}
				yield("", fmt.Errorf("%w: decode stream: %v", domain.ErrLLMUnavailable, err))
				return
			}
			if chunk.Error != "" {
				yield("", fmt.Errorf("%w: ollama: %s", domain.ErrLLMUnavailable, chunk.Error))
				return
			}
			if chunk.Message.Content != "" {
				if !yield(chunk.Message.Content, nil) {
					return
				}
			}
			if chunk.Done {
				return
			}
		}
	}
}

// ListModels returns the names of locally installed models.
func (s *LLMService) ListModels(ctx context.Context) ([]string, error) {
	resp, err := s.get(ctx, "/api/tags")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: decode tags: %v", domain.ErrLLMUnavailable, err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// PullModel downloads a model and waits for the pull to finish.
func (s *LLMService) PullModel(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: model name is required", domain.ErrInvalidInput)
	}

	resp, err := s.post(ctx, s.pullClient, "/api/pull", pullRequest{Model: name, Stream: false})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var pull pullResponse
	if err := json.NewDecoder(resp.Body).Decode(&pull); err != nil {
		return fmt.Errorf("%w: decode pull response: %v", domain.ErrLLMUnavailable, err)
	}
	if pull.Error != "" {
		return fmt.Errorf("%w: pull %s: %s", domain.ErrLLMUnavailable, name, pull.Error)
	}
	if pull.Status != "success" {
		return fmt.Errorf("%w: pull %s ended with status %q", domain.ErrLLMUnavailable, name, pull.Status)
	}
	return nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	resp, err := s.get(ctx, "/api/tags")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	s.client.CloseIdleConnections()
	s.streamClient.CloseIdleConnections()
	s.pullClient.CloseIdleConnections()
	return nil
}

// post sends a JSON body and returns a response with status 200.
func (s *LLMService) post(ctx context.Context, client *http.Client, path string, body any) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(ctx, client, req)
}

func (s *LLMService) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return s.do(ctx, s.client, req)
}

// do sends req. Transport failures wrap domain.ErrBackendUnreachable and
// non-200 responses wrap domain.ErrLLMUnavailable.
func (s *LLMService) do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: ollama at %s: %v", domain.ErrBackendUnreachable, s.baseURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: ollama error (status %d): %s",
			domain.ErrLLMUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}
