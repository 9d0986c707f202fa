package services

import (
	"context"
	"io"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockDocumentStore implements driven.DocumentStore for testing.
type mockDocumentStore struct {
	root    string
	docs    []domain.RawDocument
	skipped []domain.SkippedFile
	names   []string
	loadErr error
	addErr  error
	added   map[string]string
	removed []string
}

func (m *mockDocumentStore) Load(_ context.Context) (*domain.LoadResult, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return &domain.LoadResult{Documents: m.docs, Skipped: m.skipped}, nil
}

func (m *mockDocumentStore) Count() int { return len(m.names) }

func (m *mockDocumentStore) List() []string { return m.names }

func (m *mockDocumentStore) Add(name string, r io.Reader) (string, error) {
	if m.addErr != nil {
		return "", m.addErr
	}
	data, _ := io.ReadAll(r)
	if m.added == nil {
		m.added = make(map[string]string)
	}
	m.added[name] = string(data)
	m.names = append(m.names, name)
	return m.root + "/" + name, nil
}

func (m *mockDocumentStore) Remove(name string) error {
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			m.removed = append(m.removed, name)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockDocumentStore) Root() string { return m.root }

// mockChunker turns every document into one chunk.
type mockChunker struct{}

func (mockChunker) Split(docs []domain.RawDocument) []domain.Chunk {
	var chunks []domain.Chunk
	for _, d := range docs {
		if d.Content == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{ID: d.Metadata.Source, Text: d.Content, Metadata: d.Metadata})
	}
	return chunks
}

func (mockChunker) ChunkSize() int { return 500 }

func (mockChunker) Overlap() int { return 50 }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	mu         sync.Mutex
	exists     bool
	loadInfo   domain.IndexInfo
	loadErr    error
	buildErr   error
	built      [][]domain.Chunk
	hits       []domain.SearchHit
	searchErr  error
	lastK      int
	info       domain.IndexInfo
	buildCalls atomic.Int32
}

func (m *mockVectorIndex) Exists() bool { return m.exists }

func (m *mockVectorIndex) Load(_ context.Context) (domain.IndexInfo, error) {
	if m.loadErr != nil {
		return domain.IndexInfo{}, m.loadErr
	}
	m.info = m.loadInfo
	return m.loadInfo, nil
}

func (m *mockVectorIndex) Build(_ context.Context, chunks []domain.Chunk) (domain.IndexInfo, error) {
	m.buildCalls.Add(1)
	if m.buildErr != nil {
		return domain.IndexInfo{}, m.buildErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.built = append(m.built, chunks)
	m.info = domain.IndexInfo{State: domain.IndexStateReady, Size: len(chunks), EmbeddingModel: "fake"}
	return m.info, nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ string, k int) ([]domain.SearchHit, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Size() int {
	if !m.info.State.Serviceable() {
		return 0
	}
	return m.info.Size
}

func (m *mockVectorIndex) Info() domain.IndexInfo {
	if m.info.State == "" {
		return domain.IndexInfo{State: domain.IndexStateAbsent}
	}
	return m.info
}

func (m *mockVectorIndex) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	answer      string
	err         error
	fragments   []string
	streamErr   error
	models      []string
	listErr     error
	pullErr     error
	pingErr     error
	pulled      []string
	generates   atomic.Int32
	streams     atomic.Int32
	pulledCount atomic.Int32
	lastReq     driven.GenerateRequest
}

func (m *mockLLMService) Generate(_ context.Context, req driven.GenerateRequest) (string, error) {
	m.generates.Add(1)
	m.lastReq = req
	return m.answer, m.err
}

func (m *mockLLMService) GenerateStream(_ context.Context, req driven.GenerateRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		m.streams.Add(1)
		m.lastReq = req
		for _, f := range m.fragments {
			if !yield(f, nil) {
				return
			}
			m.pulledCount.Add(1)
		}
		if m.streamErr != nil {
			yield("", m.streamErr)
		}
	}
}

func (m *mockLLMService) ListModels(_ context.Context) ([]string, error) {
	return m.models, m.listErr
}

func (m *mockLLMService) PullModel(_ context.Context, name string) error {
	m.pulled = append(m.pulled, name)
	return m.pullErr
}

func (m *mockLLMService) ModelName() string { return "llama3.2" }

func (m *mockLLMService) Ping(_ context.Context) error { return m.pingErr }

func (m *mockLLMService) Close() error { return nil }

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	pingErr error
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1}, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 1 }

func (m *mockEmbeddingService) ModelName() string { return "fake" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.pingErr }

func (m *mockEmbeddingService) Close() error { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptResumeSystem: "Answer only from the resume.",
		driven.PromptNoContext:    noContextAnswer,
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockWatcher implements driven.DocumentWatcher for testing.
type mockWatcher struct {
	ch  chan domain.DocumentChange
	err error
}

func (m *mockWatcher) Watch(_ context.Context) (<-chan domain.DocumentChange, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ch, nil
}

const noContextAnswer = "I don't have any resume information loaded yet. Please upload a resume document first."

func hit(source, text string, score float64) domain.SearchHit {
	return domain.SearchHit{
		Chunk: domain.Chunk{ID: source + text, Text: text, Metadata: domain.DocumentMetadata{Source: source}},
		Score: score,
	}
}
