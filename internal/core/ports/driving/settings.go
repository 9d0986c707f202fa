package driving

import "github.com/custodia-labs/resumerag/internal/core/domain"

// Setting sources, lowest precedence first.
const (
	SettingSourceDefault = "default"
	SettingSourceConfig  = "config"
	SettingSourceEnv     = "env"
)

// SettingValue is one resolved setting for display.
type SettingValue struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Source string `json:"source" yaml:"source"`
}

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves settings from defaults, the config file and the environment.
	Get() (*domain.AppSettings, error)

	// Values returns every setting with the source it was resolved from.
	// Secrets are masked.
	Values() ([]SettingValue, error)

	// Set validates and persists a single dot-notation key.
	// An empty value removes the key so the default applies again.
	Set(key, value string) error

	// Keys returns the supported setting keys in display order.
	Keys() []string

	// ConfigPath returns the configuration file path.
	ConfigPath() string
}
