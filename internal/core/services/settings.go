package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider        = "embedding.provider"
	keyEmbedModel           = "embedding.model"
	keyEmbedBaseURL         = "embedding.base_url"
	keyEmbedAPIKey          = "embedding.api_key"
	keyLLMProvider          = "llm.provider"
	keyLLMModel             = "llm.model"
	keyLLMBaseURL           = "llm.base_url"
	keyLLMAPIKey            = "llm.api_key"
	keyChunker              = "pipeline.chunker"
	keyBreakpointPercentile = "pipeline.breakpoint_percentile"
	keyChunkSize            = "pipeline.chunk_size"
	keyChunkOverlap         = "pipeline.chunk_overlap"
	keyTopK                 = "pipeline.top_k"
	keyDataDir              = "paths.data_dir"
	keyStoreDir             = "paths.store_dir"
	keyOutputDir            = "paths.output_dir"
	keyRequestsPerSecond    = "ratelimit.requests_per_second"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvLLMModel        = "VANTAGE_LLM_MODEL"
	EnvEmbeddingModel  = "VANTAGE_EMBEDDING_MODEL"
)

type keyKind int

const (
	kindString keyKind = iota
	kindProvider
	kindChunker
	kindInt
	kindFloat
)

// settingsKeys lists every recognised key with its value type.
var settingsKeys = map[string]keyKind{
	keyEmbedProvider:        kindProvider,
	keyEmbedModel:           kindString,
	keyEmbedBaseURL:         kindString,
	keyEmbedAPIKey:          kindString,
	keyLLMProvider:          kindProvider,
	keyLLMModel:             kindString,
	keyLLMBaseURL:           kindString,
	keyLLMAPIKey:            kindString,
	keyChunker:              kindChunker,
	keyBreakpointPercentile: kindFloat,
	keyChunkSize:            kindInt,
	keyChunkOverlap:         kindInt,
	keyTopK:                 kindInt,
	keyDataDir:              kindString,
	keyStoreDir:             kindString,
	keyOutputDir:            kindString,
	keyRequestsPerSecond:    kindFloat,
}

// SettingsService manages application settings. Values are layered:
// defaults, then the config file, then the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Pipeline: domain.PipelineSettings{
			Chunker:              s.getChunker(defaults.Pipeline.Chunker),
			BreakpointPercentile: s.getFloat(keyBreakpointPercentile, defaults.Pipeline.BreakpointPercentile),
			ChunkSize:            s.getInt(keyChunkSize, defaults.Pipeline.ChunkSize),
			ChunkOverlap:         s.getInt(keyChunkOverlap, defaults.Pipeline.ChunkOverlap),
			TopK:                 s.getInt(keyTopK, defaults.Pipeline.TopK),
		},
		Paths: domain.PathSettings{
			DataDir:   s.getString(keyDataDir, defaults.Paths.DataDir),
			StoreDir:  s.getString(keyStoreDir, defaults.Paths.StoreDir),
			OutputDir: s.getString(keyOutputDir, defaults.Paths.OutputDir),
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, defaults.RateLimit.RequestsPerSecond),
		},
	}

	// Models default per provider, so a provider switch picks a matching model
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	s.applyEnv(settings)

	return settings, nil
}

// applyEnv overlays environment variables. API keys apply to whichever
// section uses the matching provider.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	keys := map[domain.AIProvider]string{
		domain.AIProviderOpenAI:    s.getenv(EnvOpenAIAPIKey),
		domain.AIProviderAnthropic: s.getenv(EnvAnthropicAPIKey),
	}

	if key := keys[settings.Embedding.Provider]; key != "" {
		settings.Embedding.APIKey = key
	}
	if key := keys[settings.LLM.Provider]; key != "" {
		settings.LLM.APIKey = key
	}
	if model := s.getenv(EnvEmbeddingModel); model != "" {
		settings.Embedding.Model = model
	}
	if model := s.getenv(EnvLLMModel); model != "" {
		settings.LLM.Model = model
	}
}

// Set validates and persists a single key. An empty value removes the key
// so its default applies again.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingsKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)", domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return s.configStore.Unset(key)
	}

	var stored any
	switch kind {
	case kindProvider:
		provider := domain.AIProvider(value)
		if !provider.IsValid() {
			return fmt.Errorf("%w: invalid provider %q", domain.ErrInvalidInput, value)
		}
		if key == keyEmbedProvider && !provider.SupportsEmbeddings() {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
		}
		stored = value
	case kindChunker:
		if !domain.ChunkerStrategy(value).IsValid() {
			return fmt.Errorf("%w: invalid chunker %q", domain.ErrInvalidInput, value)
		}
		stored = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		if key == keyBreakpointPercentile && (f == 0 || f > 100) {
			return fmt.Errorf("%w: %s must be in (0, 100], got %v", domain.ErrInvalidInput, key, f)
		}
		stored = f
	default:
		stored = value
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the recognised configuration keys in sorted order.
func (s *SettingsService) Keys() []string {
	return sortedKeys(settingsKeys)
}

// Validate checks that current settings can drive ingestion and analysis.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: %s requires an API key (set %s or llm.api_key)",
			domain.ErrLLMUnavailable, settings.LLM.Provider.Description(), envKeyFor(settings.LLM.Provider))
	}
	if !settings.Embedding.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %s does not support embeddings",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: %s requires an API key (set %s or embedding.api_key)",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider.Description(),
			envKeyFor(settings.Embedding.Provider))
	}

	p := settings.Pipeline
	if p.BreakpointPercentile <= 0 || p.BreakpointPercentile > 100 {
		return fmt.Errorf("%w: breakpoint percentile must be in (0, 100], got %v",
			domain.ErrInvalidInput, p.BreakpointPercentile)
	}
	if p.ChunkSize <= 0 || p.ChunkOverlap >= p.ChunkSize {
		return fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)",
			domain.ErrInvalidInput, p.ChunkOverlap, p.ChunkSize)
	}
	if p.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt treats a stored zero as a real value; only a missing key defaults.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getChunker(defaultVal domain.ChunkerStrategy) domain.ChunkerStrategy {
	strategy := domain.ChunkerStrategy(s.configStore.GetString(keyChunker))
	if !strategy.IsValid() {
		return defaultVal
	}
	return strategy
}

func envKeyFor(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderAnthropic:
		return EnvAnthropicAPIKey
	default:
		return EnvOpenAIAPIKey
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
