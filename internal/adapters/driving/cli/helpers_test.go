package cli

import (
	"bytes"
	"context"
	"io"
	"iter"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
)

// mockRAGService implements driving.RAGService for CLI tests.
type mockRAGService struct {
	hits      []domain.SearchHit
	answer    *domain.Answer
	fragments []string
	err       error
	streamErr error
	indexed   int
	stats     domain.Stats

	lastQuestion string
	lastModel    string
	lastK        int
	indexCalls   int
}

func (m *mockRAGService) Initialize(_ context.Context) error { return nil }

func (m *mockRAGService) IndexDocuments(_ context.Context) (int, error) {
	m.indexCalls++
	return m.indexed, m.err
}

func (m *mockRAGService) Search(_ context.Context, question string, k int) ([]domain.SearchHit, error) {
	m.lastQuestion, m.lastK = question, k
	return m.hits, m.err
}

func (m *mockRAGService) Query(_ context.Context, question, model string, k int) (*domain.Answer, error) {
	m.lastQuestion, m.lastModel, m.lastK = question, model, k
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockRAGService) QueryStream(_ context.Context, question, model string, k int) (*domain.AnswerStream, error) {
	m.lastQuestion, m.lastModel, m.lastK = question, model, k
	if m.err != nil {
		return nil, m.err
	}
	fragments, streamErr := m.fragments, m.streamErr
	return &domain.AnswerStream{
		Model:    model,
		Sources:  m.answer.Sources,
		Warning:  m.answer.Warning,
		Grounded: true,
		Fragments: iter.Seq2[string, error](func(yield func(string, error) bool) {
			for _, f := range fragments {
				if !yield(f, nil) {
					return
				}
			}
			if streamErr != nil {
				yield("", streamErr)
			}
		}),
	}, nil
}

func (m *mockRAGService) Stats(_ context.Context) domain.Stats { return m.stats }

// mockModelService implements driving.ModelService.
type mockModelService struct {
	models  []domain.ModelInfo
	pullErr error
	pulled  string
}

func (m *mockModelService) List(_ context.Context) ([]domain.ModelInfo, error) { return m.models, nil }

func (m *mockModelService) Pull(_ context.Context, name string) error {
	m.pulled = name
	return m.pullErr
}

func (m *mockModelService) Default() string { return "llama3.2" }

// mockHealthService implements driving.HealthService.
type mockHealthService struct {
	health domain.Health
}

func (m *mockHealthService) Check(_ context.Context) domain.Health { return m.health }

// mockDocumentService implements driving.DocumentService.
type mockDocumentService struct {
	docs    []string
	added   map[string]string
	removed []string
	opened  []string
	err     error
}

func (m *mockDocumentService) List() []string { return m.docs }

func (m *mockDocumentService) Add(name string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.added == nil {
		m.added = map[string]string{}
	}
	m.added[name] = string(data)
	return "/data/resume/" + name, nil
}

func (m *mockDocumentService) Remove(name string) error {
	m.removed = append(m.removed, name)
	return m.err
}

func (m *mockDocumentService) Open(name string) error {
	m.opened = append(m.opened, name)
	return m.err
}

func (m *mockDocumentService) Dir() string { return "/data/resume" }

// mockSettingsService implements driving.SettingsService.
type mockSettingsService struct {
	values []driving.SettingValue
	set    map[string]string
	setErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettingsService) Values() ([]driving.SettingValue, error) { return m.values, nil }

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = map[string]string{}
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"llm.provider", "llm.model", "llm.api_key"}
}

func (m *mockSettingsService) ConfigPath() string { return "/home/test/.resumerag/config.toml" }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	rag       *mockRAGService
	models    *mockModelService
	health    *mockHealthService
	documents *mockDocumentService
	settings  *mockSettingsService
}

func hit(source, text string, score float64) domain.SearchHit {
	return domain.SearchHit{
		Chunk: domain.Chunk{
			ID:       source + "-0",
			Text:     text,
			Metadata: domain.DocumentMetadata{Source: source},
		},
		Score: score,
	}
}

// setupTestServices installs mock services and returns them with a cleanup
// function that restores the previous state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		rag: &mockRAGService{
			hits: []domain.SearchHit{hit("cv.pdf", "Senior engineer at Acme since 2019.", 0.91)},
			answer: &domain.Answer{
				Text:     "They work at Acme.",
				Model:    "llama3.2",
				Sources:  []string{"cv.pdf"},
				Grounded: true,
			},
			fragments: []string{"They ", "work ", "at Acme."},
			indexed:   12,
			stats: domain.Stats{
				Initialized:      true,
				DocumentsCount:   1,
				Documents:        []string{"cv.pdf"},
				ChunksCount:      12,
				VectorstoreReady: true,
				IndexState:       "ready",
				EmbeddingModel:   "nomic-embed-text",
			},
		},
		models: &mockModelService{models: []domain.ModelInfo{
			{Name: "llama3.2", Description: "Meta Llama 3.2", IsAvailable: true},
			{Name: "mistral", Description: "Mistral 7B"},
		}},
		health: &mockHealthService{health: domain.Health{
			Status:             domain.HealthStatusHealthy,
			LLMConnected:       true,
			EmbeddingConnected: true,
			VectorstoreReady:   true,
			DocumentsLoaded:    1,
		}},
		documents: &mockDocumentService{docs: []string{"cv.pdf", "notes.md"}},
		settings: &mockSettingsService{values: []driving.SettingValue{
			{Key: "llm.provider", Value: "ollama", Source: driving.SettingSourceDefault},
			{Key: "llm.api_key", Value: "sk-1...cdef", Source: driving.SettingSourceEnv},
			{Key: "rag.top_k", Value: "4", Source: driving.SettingSourceConfig},
		}},
	}

	oldBootstrap, oldTerminal := bootstrap, isTerminal
	bootstrap = nil
	isTerminal = func() bool { return false }

	SetServices(&Services{
		RAG:       ts.rag,
		Models:    ts.models,
		Health:    ts.health,
		Documents: ts.documents,
		Settings:  ts.settings,
	})

	return ts, func() {
		SetServices(&Services{})
		bootstrap, isTerminal = oldBootstrap, oldTerminal
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// lines splits output into trimmed non-empty lines.
func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
