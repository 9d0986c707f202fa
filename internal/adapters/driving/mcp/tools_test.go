package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and sources", func(t *testing.T) {
		rag := &mockRAGService{answer: &domain.Answer{
			Text:    "Jane works at Acme.",
			Model:   "llama3.2",
			Sources: []string{"resume.txt"},
		}}
		server := newTestServer(t, &Ports{RAG: rag})

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Question: "Where?", Model: "mistral", TopK: 2})

		require.NoError(t, err)
		assert.Equal(t, "Jane works at Acme.", output.Answer)
		assert.Equal(t, "llama3.2", output.Model)
		assert.Equal(t, []string{"resume.txt"}, output.Sources)
		assert.Equal(t, "Where?", rag.lastQuery)
		assert.Equal(t, "mistral", rag.lastModel)
		assert.Equal(t, 2, rag.lastTopK)
	})

	t.Run("carries index warning", func(t *testing.T) {
		rag := &mockRAGService{answer: &domain.Answer{
			Text:    "No resume information is loaded.",
			Warning: "the resume index is corrupt, run `resumerag index` to rebuild it",
		}}
		server := newTestServer(t, &Ports{RAG: rag})

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Question: "Where?"})

		require.NoError(t, err)
		assert.Equal(t, rag.answer.Warning, output.Warning)
	})

	t.Run("invalid input is reported", func(t *testing.T) {
		rag := &mockRAGService{err: domain.ErrInvalidInput}
		server := newTestServer(t, &Ports{RAG: rag})

		_, _, err := server.handleQuery(ctx, nil, QueryInput{})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "query")
	})

	t.Run("unreachable backend gets a hint", func(t *testing.T) {
		rag := &mockRAGService{err: &domain.GenerationError{
			Sources: []string{"resume.txt"},
			Err:     domain.ErrLLMUnavailable,
		}}
		server := newTestServer(t, &Ports{RAG: rag})

		_, _, err := server.handleQuery(ctx, nil, QueryInput{Question: "Where?"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, err.Error(), "backend is running")
	})
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		rag := &mockRAGService{hits: []domain.SearchHit{
			hit("resume.txt", "Senior Engineer at Acme", 0.95),
			hit("cv.md", "Go and Kubernetes", 0.5),
		}}
		server := newTestServer(t, &Ports{RAG: rag})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "Acme", TopK: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		require.Len(t, output.Results, 2)
		assert.Equal(t, "resume.txt", output.Results[0].Source)
		assert.Equal(t, 0.95, output.Results[0].Score)
		assert.Equal(t, "Senior Engineer at Acme", output.Results[0].Content)
		assert.Equal(t, 2, rag.lastTopK)
	})

	t.Run("zero top_k passes through for the default", func(t *testing.T) {
		rag := &mockRAGService{}
		server := newTestServer(t, &Ports{RAG: rag})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 0, rag.lastTopK)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		rag := &mockRAGService{err: errors.New("search failed")}
		server := newTestServer(t, &Ports{RAG: rag})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("returns chunk count and warnings", func(t *testing.T) {
		rag := &mockRAGService{
			chunks: 7,
			stats:  domain.Stats{Warnings: []string{"notes.docx: unsupported format"}},
		}
		server := newTestServer(t, &Ports{RAG: rag})

		_, output, err := server.handleIndex(ctx, nil, EmptyInput{})

		require.NoError(t, err)
		assert.Equal(t, 7, output.Chunks)
		assert.Equal(t, []string{"notes.docx: unsupported format"}, output.Warnings)
		assert.Equal(t, 1, rag.indexCalls)
	})

	t.Run("build in progress gets a retry hint", func(t *testing.T) {
		rag := &mockRAGService{err: domain.ErrBuildInProgress}
		server := newTestServer(t, &Ports{RAG: rag})

		_, _, err := server.handleIndex(ctx, nil, EmptyInput{})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBuildInProgress)
		assert.Contains(t, err.Error(), "retry")
	})
}

func TestServer_handleStats(t *testing.T) {
	stats := domain.Stats{Initialized: true, DocumentsCount: 1, Documents: []string{"resume.txt"}, ChunksCount: 4}
	server := newTestServer(t, &Ports{RAG: &mockRAGService{stats: stats}})

	_, output, err := server.handleStats(context.Background(), nil, EmptyInput{})

	require.NoError(t, err)
	assert.Equal(t, stats, output)
}

func TestServer_handleListModels(t *testing.T) {
	ctx := context.Background()

	t.Run("lists models with default", func(t *testing.T) {
		models := &mockModelService{models: []domain.ModelInfo{{Name: "llama3.2", IsAvailable: true}}}
		server := newTestServer(t, &Ports{RAG: &mockRAGService{}, Models: models})

		_, output, err := server.handleListModels(ctx, nil, EmptyInput{})

		require.NoError(t, err)
		assert.Len(t, output.Models, 1)
		assert.Equal(t, "llama3.2", output.Default)
	})

	t.Run("missing service", func(t *testing.T) {
		server := newTestServer(t, &Ports{RAG: &mockRAGService{}})

		_, _, err := server.handleListModels(ctx, nil, EmptyInput{})

		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})
}

func TestServer_handleHealth(t *testing.T) {
	health := &mockHealthService{health: domain.Health{Status: domain.HealthStatusHealthy, LLMConnected: true}}
	server := newTestServer(t, &Ports{RAG: &mockRAGService{}, Health: health})

	_, output, err := server.handleHealth(context.Background(), nil, EmptyInput{})

	require.NoError(t, err)
	assert.Equal(t, domain.HealthStatusHealthy, output.Status)
	assert.True(t, output.LLMConnected)
}
