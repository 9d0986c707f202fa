package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resumerag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
)

func envMap(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func newSettings(values map[string]any, env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore(values)
	return NewSettingsService(store).WithEnv(envMap(env)), store
}

func TestSettingsService_Defaults(t *testing.T) {
	svc, _ := newSettings(nil, nil)

	settings, err := svc.Get()
	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, &defaults, settings)
	assert.Equal(t, ":memory:", svc.ConfigPath())
}

func TestSettingsService_ConfigAndEnvPrecedence(t *testing.T) {
	svc, _ := newSettings(map[string]any{
		"chunking.size":        int64(800),
		"chunking.overlap":     int64(80),
		"retrieval.top_k":      int64(5),
		"llm.model":            "mistral",
		"llm.temperature":      0.2,
		"documents.dir":        "/cfg/docs",
		"embedding.batch_size": int64(8),
		"models.available":     []any{"mistral:Mistral 7B"},
	}, map[string]string{
		"TOP_K_RESULTS":   "4",
		"RESUME_DIR":      "/env/docs",
		"OLLAMA_BASE_URL": "http://ollama:11434",
		"EMBEDDING_MODEL": "mxbai-embed-large",
		"DEFAULT_MODEL":   "",
	})

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, 800, settings.Chunking.Size)
	assert.Equal(t, 80, settings.Chunking.Overlap)
	assert.Equal(t, 4, settings.TopK)
	assert.Equal(t, "/env/docs", settings.DocumentsDir)
	assert.Equal(t, "mistral", settings.LLM.Model)
	assert.InDelta(t, 0.2, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, "http://ollama:11434", settings.LLM.BaseURL)
	assert.Equal(t, "http://ollama:11434", settings.Embedding.BaseURL)
	assert.Equal(t, "mxbai-embed-large", settings.Embedding.Model)
	assert.Equal(t, 8, settings.Embedding.BatchSize)
	assert.Equal(t, []string{"mistral:Mistral 7B"}, settings.AvailableModels)

	values, err := svc.Values()
	require.NoError(t, err)
	sources := map[string]string{}
	for _, v := range values {
		sources[v.Key] = v.Source
	}
	assert.Equal(t, driving.SettingSourceEnv, sources["retrieval.top_k"])
	assert.Equal(t, driving.SettingSourceConfig, sources["chunking.size"])
	assert.Equal(t, driving.SettingSourceConfig, sources["llm.model"])
	assert.Equal(t, driving.SettingSourceDefault, sources["server.addr"])
}

func TestSettingsService_ProviderDefaults(t *testing.T) {
	svc, _ := newSettings(map[string]any{
		"llm.provider":       "openai",
		"embedding.provider": "openai",
	}, map[string]string{
		"OPENAI_API_KEY":  "sk-test-1234",
		"OLLAMA_BASE_URL": "http://ollama:11434",
	})

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", settings.LLM.Model)
	assert.Empty(t, settings.LLM.BaseURL)
	assert.Equal(t, "sk-test-1234", settings.LLM.APIKey)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, "sk-test-1234", settings.Embedding.APIKey)

	values, err := svc.Values()
	require.NoError(t, err)
	for _, v := range values {
		if v.Key == "llm.api_key" {
			assert.Equal(t, "****1234", v.Value)
		}
	}
}

func TestSettingsService_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		env    map[string]string
	}{
		{"overlap not below size", map[string]any{"chunking.size": int64(100), "chunking.overlap": int64(100)}, nil},
		{"bad env int", nil, map[string]string{"CHUNK_SIZE": "big"}},
		{"bad provider", map[string]any{"llm.provider": "anthropic"}, nil},
		{"wrong type", map[string]any{"documents.dir": int64(3)}, nil},
		{"zero top k", map[string]any{"retrieval.top_k": int64(0)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newSettings(tt.values, tt.env)
			_, err := svc.Get()
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestSettingsService_Set(t *testing.T) {
	svc, store := newSettings(nil, nil)

	require.NoError(t, svc.Set("chunking.size", "800"))
	require.NoError(t, svc.Set("llm.temperature", "0.1"))
	require.NoError(t, svc.Set("llm.provider", "OpenAI"))
	require.NoError(t, svc.Set("models.available", "llama3.2:Llama 3.2, mistral"))

	assert.Equal(t, 800, store.GetInt("chunking.size"))
	assert.InDelta(t, 0.1, store.GetFloat("llm.temperature"), 1e-9)
	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, []string{"llama3.2:Llama 3.2", "mistral"}, store.GetStringSlice("models.available"))

	require.NoError(t, svc.Set("llm.provider", ""))
	_, ok := store.Get("llm.provider")
	assert.False(t, ok)
}

func TestSettingsService_SetValidates(t *testing.T) {
	svc, store := newSettings(nil, nil)

	err := svc.Set("chunking.overlap", "500")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	_, ok := store.Get("chunking.overlap")
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Set("chunking.size", "ten"), domain.ErrConfiguration)
	assert.ErrorIs(t, svc.Set("llm.provider", "cohere"), domain.ErrConfiguration)
	assert.ErrorIs(t, svc.Set("search.mode", "hybrid"), domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	svc, _ := newSettings(nil, nil)
	keys := svc.Keys()

	assert.Equal(t, "documents.dir", keys[0])
	assert.Contains(t, keys, "chunking.overlap")
	assert.Contains(t, keys, "embedding.requests_per_second")
	assert.Len(t, keys, len(settingTable))
}
