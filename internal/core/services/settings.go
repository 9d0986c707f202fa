package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDocumentsDir    = "documents.dir"
	keyIndexDir        = "index.dir"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyTopK            = "retrieval.top_k"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedBatchSize  = "embedding.batch_size"
	keyEmbedRateLimit  = "embedding.requests_per_second"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMTemperature  = "llm.temperature"
	keyModelsAvailable = "models.available"
	keyServerAddr      = "server.addr"
)

// valueKind is how a setting is parsed and stored.
type valueKind int

const (
	kindString valueKind = iota
	kindSecret
	kindInt
	kindFloat
	kindProvider
	kindList
)

// setting binds a config key to a field of domain.AppSettings.
type setting struct {
	key  string
	kind valueKind
	env  string
	get  func(*domain.AppSettings) any
	set  func(*domain.AppSettings, any)

	// localOnly limits the environment override to local providers.
	localOnly func(*domain.AppSettings) domain.AIProvider
}

// settingTable lists every supported key in display order.
var settingTable = []setting{
	{
		key:  keyDocumentsDir,
		kind: kindString,
		env:  "RESUME_DIR",
		get:  func(s *domain.AppSettings) any { return s.DocumentsDir },
		set:  func(s *domain.AppSettings, v any) { s.DocumentsDir = v.(string) },
	},
	{
		key:  keyIndexDir,
		kind: kindString,
		env:  "VECTORSTORE_DIR",
		get:  func(s *domain.AppSettings) any { return s.IndexDir },
		set:  func(s *domain.AppSettings, v any) { s.IndexDir = v.(string) },
	},
	{
		key:  keyChunkSize,
		kind: kindInt,
		env:  "CHUNK_SIZE",
		get:  func(s *domain.AppSettings) any { return s.Chunking.Size },
		set:  func(s *domain.AppSettings, v any) { s.Chunking.Size = v.(int) },
	},
	{
		key:  keyChunkOverlap,
		kind: kindInt,
		env:  "CHUNK_OVERLAP",
		get:  func(s *domain.AppSettings) any { return s.Chunking.Overlap },
		set:  func(s *domain.AppSettings, v any) { s.Chunking.Overlap = v.(int) },
	},
	{
		key:  keyTopK,
		kind: kindInt,
		env:  "TOP_K_RESULTS",
		get:  func(s *domain.AppSettings) any { return s.TopK },
		set:  func(s *domain.AppSettings, v any) { s.TopK = v.(int) },
	},
	{
		key:  keyEmbedProvider,
		kind: kindProvider,
		get:  func(s *domain.AppSettings) any { return s.Embedding.Provider },
		set:  func(s *domain.AppSettings, v any) { s.Embedding.Provider = v.(domain.AIProvider) },
	},
	{
		key:  keyEmbedModel,
		kind: kindString,
		env:  "EMBEDDING_MODEL",
		get:  func(s *domain.AppSettings) any { return s.Embedding.Model },
		set:  func(s *domain.AppSettings, v any) { s.Embedding.Model = v.(string) },
	},
	{
		key:       keyEmbedBaseURL,
		kind:      kindString,
		env:       "OLLAMA_BASE_URL",
		get:       func(s *domain.AppSettings) any { return s.Embedding.BaseURL },
		set:       func(s *domain.AppSettings, v any) { s.Embedding.BaseURL = v.(string) },
		localOnly: func(s *domain.AppSettings) domain.AIProvider { return s.Embedding.Provider },
	},
	{
		key:  keyEmbedAPIKey,
		kind: kindSecret,
		env:  "OPENAI_API_KEY",
		get:  func(s *domain.AppSettings) any { return s.Embedding.APIKey },
		set:  func(s *domain.AppSettings, v any) { s.Embedding.APIKey = v.(string) },
	},
	{
		key:  keyEmbedBatchSize,
		kind: kindInt,
		get:  func(s *domain.AppSettings) any { return s.Embedding.BatchSize },
		set:  func(s *domain.AppSettings, v any) { s.Embedding.BatchSize = v.(int) },
	},
	{
		key:  keyEmbedRateLimit,
		kind: kindFloat,
		get:  func(s *domain.AppSettings) any { return s.Embedding.RequestsPerSecond },
		set:  func(s *domain.AppSettings, v any) { s.Embedding.RequestsPerSecond = v.(float64) },
	},
	{
		key:  keyLLMProvider,
		kind: kindProvider,
		get:  func(s *domain.AppSettings) any { return s.LLM.Provider },
		set:  func(s *domain.AppSettings, v any) { s.LLM.Provider = v.(domain.AIProvider) },
	},
	{
		key:  keyLLMModel,
		kind: kindString,
		env:  "DEFAULT_MODEL",
		get:  func(s *domain.AppSettings) any { return s.LLM.Model },
		set:  func(s *domain.AppSettings, v any) { s.LLM.Model = v.(string) },
	},
	{
		key:       keyLLMBaseURL,
		kind:      kindString,
		env:       "OLLAMA_BASE_URL",
		get:       func(s *domain.AppSettings) any { return s.LLM.BaseURL },
		set:       func(s *domain.AppSettings, v any) { s.LLM.BaseURL = v.(string) },
		localOnly: func(s *domain.AppSettings) domain.AIProvider { return s.LLM.Provider },
	},
	{
		key:  keyLLMAPIKey,
		kind: kindSecret,
		env:  "OPENAI_API_KEY",
		get:  func(s *domain.AppSettings) any { return s.LLM.APIKey },
		set:  func(s *domain.AppSettings, v any) { s.LLM.APIKey = v.(string) },
	},
	{
		key:  keyLLMTemperature,
		kind: kindFloat,
		get:  func(s *domain.AppSettings) any { return s.LLM.Temperature },
		set:  func(s *domain.AppSettings, v any) { s.LLM.Temperature = v.(float64) },
	},
	{
		key:  keyModelsAvailable,
		kind: kindList,
		get:  func(s *domain.AppSettings) any { return s.AvailableModels },
		set:  func(s *domain.AppSettings, v any) { s.AvailableModels = v.([]string) },
	},
	{
		key:  keyServerAddr,
		kind: kindString,
		get:  func(s *domain.AppSettings) any { return s.ServerAddr },
		set:  func(s *domain.AppSettings, v any) { s.ServerAddr = v.(string) },
	},
}

// SettingsService resolves settings from defaults, the config store and
// environment variables, in increasing precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore, lookupEnv: os.LookupEnv}
}

// WithEnv replaces the environment lookup.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// Get resolves and validates the current settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings, _, err := s.resolve()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Values returns every setting with its source.
func (s *SettingsService) Values() ([]driving.SettingValue, error) {
	settings, sources, err := s.resolve()
	if err != nil {
		return nil, err
	}

	values := make([]driving.SettingValue, 0, len(settingTable))
	for _, def := range settingTable {
		values = append(values, driving.SettingValue{
			Key:    def.key,
			Value:  format(def.kind, def.get(settings)),
			Source: sources[def.key],
		})
	}
	return values, nil
}

// Set validates value against the resulting settings and persists it.
func (s *SettingsService) Set(key, value string) error {
	def, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return s.configStore.Delete(key)
	}

	parsed, err := coerce(def, value)
	if err != nil {
		return err
	}

	settings, _, err := s.resolve()
	if err != nil {
		return err
	}
	def.set(settings, parsed)
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, storable(parsed)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the supported setting keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingTable))
	for i, def := range settingTable {
		keys[i] = def.key
	}
	return keys
}

// ConfigPath returns the configuration file path.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// resolve layers config and environment over the defaults. A provider set
// without a model or base URL gets that provider's defaults.
func (s *SettingsService) resolve() (*domain.AppSettings, map[string]string, error) {
	settings := domain.DefaultAppSettings()
	sources := make(map[string]string, len(settingTable))

	for _, def := range settingTable {
		sources[def.key] = driving.SettingSourceDefault

		if raw, ok := s.configStore.Get(def.key); ok {
			v, err := coerce(def, raw)
			if err != nil {
				return nil, nil, err
			}
			def.set(&settings, v)
			sources[def.key] = driving.SettingSourceConfig
		}

		if def.env == "" || (def.localOnly != nil && !def.localOnly(&settings).IsLocal()) {
			continue
		}
		if raw, ok := s.lookupEnv(def.env); ok && strings.TrimSpace(raw) != "" {
			v, err := coerce(def, raw)
			if err != nil {
				return nil, nil, fmt.Errorf("environment %s: %w", def.env, err)
			}
			def.set(&settings, v)
			sources[def.key] = driving.SettingSourceEnv
		}
	}

	applyProviderDefaults(&settings.Embedding.Provider, &settings.Embedding.Model, &settings.Embedding.BaseURL,
		domain.DefaultEmbeddingModels(), sources[keyEmbedModel], sources[keyEmbedBaseURL])
	applyProviderDefaults(&settings.LLM.Provider, &settings.LLM.Model, &settings.LLM.BaseURL,
		domain.DefaultLLMModels(), sources[keyLLMModel], sources[keyLLMBaseURL])

	return &settings, sources, nil
}

func applyProviderDefaults(
	provider *domain.AIProvider, model, baseURL *string,
	models map[domain.AIProvider]string, modelSource, baseURLSource string,
) {
	if modelSource == driving.SettingSourceDefault {
		if m, ok := models[*provider]; ok {
			*model = m
		}
	}
	if baseURLSource == driving.SettingSourceDefault && !provider.IsLocal() {
		*baseURL = ""
	}
}

func lookupSetting(key string) (setting, bool) {
	i := slices.IndexFunc(settingTable, func(def setting) bool { return def.key == key })
	if i < 0 {
		return setting{}, false
	}
	return settingTable[i], true
}

// coerce converts a config or command-line value to the setting's Go type.
func coerce(def setting, raw any) (any, error) {
	invalid := func(want string) error {
		return fmt.Errorf("%w: %s must be %s, got %v", domain.ErrConfiguration, def.key, want, raw)
	}

	switch def.kind {
	case kindInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != float64(int(v)) {
				return nil, invalid("an integer")
			}
			return int(v), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, invalid("an integer")
			}
			return n, nil
		}
		return nil, invalid("an integer")

	case kindFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, invalid("a number")
			}
			return f, nil
		}
		return nil, invalid("a number")

	case kindProvider:
		str, ok := raw.(string)
		provider := domain.AIProvider(strings.ToLower(strings.TrimSpace(str)))
		if !ok || !provider.IsValid() {
			return nil, invalid(fmt.Sprintf("one of %v", domain.AllProviders()))
		}
		return provider, nil

	case kindList:
		switch v := raw.(type) {
		case []string:
			return v, nil
		case []any:
			list := make([]string, 0, len(v))
			for _, item := range v {
				str, ok := item.(string)
				if !ok {
					return nil, invalid("a list of strings")
				}
				list = append(list, str)
			}
			return list, nil
		case string:
			var list []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					list = append(list, item)
				}
			}
			return list, nil
		}
		return nil, invalid("a list of strings")

	default:
		str, ok := raw.(string)
		if !ok {
			return nil, invalid("a string")
		}
		return strings.TrimSpace(str), nil
	}
}

// storable converts typed values into what the config store persists.
func storable(v any) any {
	if p, ok := v.(domain.AIProvider); ok {
		return p.String()
	}
	return v
}

// format renders a setting for display.
func format(kind valueKind, v any) string {
	switch kind {
	case kindSecret:
		str, _ := v.(string)
		if str == "" {
			return ""
		}
		if len(str) <= 4 {
			return "****"
		}
		return "****" + str[len(str)-4:]
	case kindList:
		list, _ := v.([]string)
		return strings.Join(list, ", ")
	default:
		return fmt.Sprint(v)
	}
}
