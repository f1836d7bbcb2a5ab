package driving

import "github.com/custodia-labs/vantage-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults and
	// environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Set updates a single configuration key and persists it.
	Set(key, value string) error

	// Keys lists the recognised configuration keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks that the settings can drive a run.
	Validate() error

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
