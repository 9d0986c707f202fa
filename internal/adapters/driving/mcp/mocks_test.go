package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	answer     *domain.Answer
	hits       []domain.SearchHit
	chunks     int
	stats      domain.Stats
	err        error
	lastQuery  string
	lastModel  string
	lastTopK   int
	indexCalls int
}

func (m *mockRAGService) Initialize(_ context.Context) error {
	return m.err
}

func (m *mockRAGService) IndexDocuments(_ context.Context) (int, error) {
	m.indexCalls++
	return m.chunks, m.err
}

func (m *mockRAGService) Search(_ context.Context, question string, k int) ([]domain.SearchHit, error) {
	m.lastQuery, m.lastTopK = question, k
	return m.hits, m.err
}

func (m *mockRAGService) Query(_ context.Context, question, model string, k int) (*domain.Answer, error) {
	m.lastQuery, m.lastModel, m.lastTopK = question, model, k
	return m.answer, m.err
}

func (m *mockRAGService) QueryStream(_ context.Context, _, _ string, _ int) (*domain.AnswerStream, error) {
	return nil, m.err
}

func (m *mockRAGService) Stats(_ context.Context) domain.Stats {
	return m.stats
}

// mockModelService is a mock implementation of driving.ModelService.
type mockModelService struct {
	models []domain.ModelInfo
	err    error
}

func (m *mockModelService) List(_ context.Context) ([]domain.ModelInfo, error) {
	return m.models, m.err
}

func (m *mockModelService) Pull(_ context.Context, _ string) error {
	return m.err
}

func (m *mockModelService) Default() string {
	return "llama3.2"
}

// mockHealthService is a mock implementation of driving.HealthService.
type mockHealthService struct {
	health domain.Health
}

func (m *mockHealthService) Check(_ context.Context) domain.Health {
	return m.health
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []string
	err       error
}

func (m *mockDocumentService) List() []string {
	return m.documents
}

func (m *mockDocumentService) Add(name string, _ io.Reader) (string, error) {
	return name, m.err
}

func (m *mockDocumentService) Remove(_ string) error {
	return m.err
}

func (m *mockDocumentService) Open(_ string) error {
	return m.err
}

func (m *mockDocumentService) Dir() string {
	return "/data/resume"
}

func hit(source, text string, score float64) domain.SearchHit {
	return domain.SearchHit{
		Chunk: domain.Chunk{
			ID:       source + "-0",
			Text:     text,
			Metadata: domain.DocumentMetadata{Source: source, FileType: domain.FileTypeText},
		},
		Score: score,
	}
}
