package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vantage-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// mockAIValidator records validation calls.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

func setupSettingsService(t *testing.T, env map[string]string) (*SettingsService, *file.ConfigStore) {
	t.Helper()

	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	service := NewSettingsService(store, nil)
	service.getenv = func(key string) string { return env[key] }
	return service, store
}

func TestNewSettingsService(t *testing.T) {
	service, _ := setupSettingsService(t, nil)
	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := setupSettingsService(t, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.LLM.Model, settings.LLM.Model)
	assert.Equal(t, defaults.Pipeline, settings.Pipeline)
	assert.Equal(t, defaults.Paths, settings.Paths)
	assert.Zero(t, settings.RateLimit.RequestsPerSecond)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := setupSettingsService(t, nil)
	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("embedding.model", "text-embedding-3-large"))
	require.NoError(t, store.Set("pipeline.chunker", "recursive"))
	require.NoError(t, store.Set("pipeline.top_k", 8))
	require.NoError(t, store.Set("pipeline.breakpoint_percentile", 90.5))
	require.NoError(t, store.Set("paths.output_dir", "/tmp/out"))

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.LLM.Model, "model defaults per provider")
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, domain.ChunkerRecursive, settings.Pipeline.Chunker)
	assert.Equal(t, 8, settings.Pipeline.TopK)
	assert.InDelta(t, 90.5, settings.Pipeline.BreakpointPercentile, 1e-9)
	assert.Equal(t, "/tmp/out", settings.Paths.OutputDir)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, store := setupSettingsService(t, nil)
	require.NoError(t, store.Set("llm.provider", "invalid_provider"))
	require.NoError(t, store.Set("pipeline.chunker", "fixed"))

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.Pipeline.Chunker, settings.Pipeline.Chunker)
}

func TestSettingsService_Get_ZeroOverlapIsKept(t *testing.T) {
	service, store := setupSettingsService(t, nil)
	require.NoError(t, store.Set("pipeline.chunk_overlap", 0))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, settings.Pipeline.ChunkOverlap)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	service, store := setupSettingsService(t, map[string]string{
		EnvOpenAIAPIKey:    "sk-env",
		EnvAnthropicAPIKey: "sk-ant-env",
		EnvLLMModel:        "claude-3-5-sonnet-latest",
	})
	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("llm.api_key", "sk-ant-file"))

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, "sk-env", settings.Embedding.APIKey, "openai key applies to the embedding provider")
	assert.Equal(t, "sk-ant-env", settings.LLM.APIKey, "environment wins over the config file")
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
}

func TestSettingsService_Get_EnvironmentIgnoredForOtherProviders(t *testing.T) {
	service, store := setupSettingsService(t, map[string]string{EnvAnthropicAPIKey: "sk-ant-env"})
	require.NoError(t, store.Set("embedding.provider", "ollama"))

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Empty(t, settings.Embedding.APIKey)
	assert.Empty(t, settings.LLM.APIKey)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  any
	}{
		{"provider", "llm.provider", "ollama", "ollama"},
		{"string", "llm.model", "llama3.2", "llama3.2"},
		{"chunker", "pipeline.chunker", "recursive", "recursive"},
		{"int", "pipeline.top_k", "7", 7},
		{"float", "pipeline.breakpoint_percentile", "92.5", 92.5},
		{"rate", "ratelimit.requests_per_second", "2", 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := setupSettingsService(t, nil)

			require.NoError(t, service.Set(tt.key, tt.value))

			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"unknown provider", "llm.provider", "cohere"},
		{"provider without embeddings", "embedding.provider", "anthropic"},
		{"unknown chunker", "pipeline.chunker", "fixed"},
		{"not an integer", "pipeline.top_k", "five"},
		{"negative integer", "pipeline.chunk_size", "-1"},
		{"not a number", "pipeline.breakpoint_percentile", "high"},
		{"percentile above 100", "pipeline.breakpoint_percentile", "150"},
		{"zero percentile", "pipeline.breakpoint_percentile", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := setupSettingsService(t, nil)

			err := service.Set(tt.key, tt.value)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestSettingsService_Set_PercentileOutOfRangeNotStored(t *testing.T) {
	service, store := setupSettingsService(t, nil)

	err := service.Set("pipeline.breakpoint_percentile", "150")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, ok := store.Get("pipeline.breakpoint_percentile")
	assert.False(t, ok)

	require.NoError(t, service.Set("pipeline.breakpoint_percentile", "100"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.InDelta(t, 100.0, settings.Pipeline.BreakpointPercentile, 1e-9)
}

func TestSettingsService_Set_EmptyValueRestoresDefault(t *testing.T) {
	service, store := setupSettingsService(t, nil)
	require.NoError(t, service.Set("pipeline.top_k", "9"))
	require.NoError(t, service.Set("pipeline.top_k", ""))

	_, ok := store.Get("pipeline.top_k")
	assert.False(t, ok)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopK, settings.Pipeline.TopK)
}

func TestSettingsService_Set_Persists(t *testing.T) {
	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, NewSettingsService(store, nil).Set("pipeline.chunk_size", "800"))

	reopened, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	settings, err := NewSettingsService(reopened, nil).Get()
	require.NoError(t, err)
	assert.Equal(t, 800, settings.Pipeline.ChunkSize)
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := setupSettingsService(t, nil)

	keys := service.Keys()
	assert.Len(t, keys, len(settingsKeys))
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "pipeline.chunker")
	assert.Contains(t, keys, "ratelimit.requests_per_second")
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("missing llm key", func(t *testing.T) {
		service, _ := setupSettingsService(t, nil)
		err := service.Validate()
		assert.True(t, errors.Is(err, domain.ErrLLMUnavailable), "got %v", err)
		assert.Contains(t, err.Error(), EnvOpenAIAPIKey)
	})

	t.Run("missing embedding key", func(t *testing.T) {
		service, store := setupSettingsService(t, map[string]string{EnvAnthropicAPIKey: "sk-ant"})
		require.NoError(t, store.Set("llm.provider", "anthropic"))
		err := service.Validate()
		assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable), "got %v", err)
	})

	t.Run("configured", func(t *testing.T) {
		service, _ := setupSettingsService(t, map[string]string{EnvOpenAIAPIKey: "sk-test"})
		assert.NoError(t, service.Validate())
	})

	t.Run("local providers need no keys", func(t *testing.T) {
		service, store := setupSettingsService(t, nil)
		require.NoError(t, store.Set("llm.provider", "ollama"))
		require.NoError(t, store.Set("embedding.provider", "ollama"))
		assert.NoError(t, service.Validate())
	})

	t.Run("overlap not smaller than size", func(t *testing.T) {
		service, store := setupSettingsService(t, map[string]string{EnvOpenAIAPIKey: "sk-test"})
		require.NoError(t, store.Set("pipeline.chunk_size", 100))
		require.NoError(t, store.Set("pipeline.chunk_overlap", 100))
		assert.True(t, errors.Is(service.Validate(), domain.ErrInvalidInput))
	})

	t.Run("percentile out of range", func(t *testing.T) {
		service, store := setupSettingsService(t, map[string]string{EnvOpenAIAPIKey: "sk-test"})
		require.NoError(t, store.Set("pipeline.breakpoint_percentile", 120.0))
		assert.True(t, errors.Is(service.Validate(), domain.ErrInvalidInput))
	})

	t.Run("zero top k", func(t *testing.T) {
		service, store := setupSettingsService(t, map[string]string{EnvOpenAIAPIKey: "sk-test"})
		require.NoError(t, store.Set("pipeline.top_k", 0))
		assert.True(t, errors.Is(service.Validate(), domain.ErrInvalidInput))
	})
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := setupSettingsService(t, nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateConfig(t *testing.T) {
	t.Run("no validator", func(t *testing.T) {
		service, _ := setupSettingsService(t, nil)
		assert.NoError(t, service.ValidateEmbeddingConfig())
		assert.NoError(t, service.ValidateLLMConfig())
	})

	t.Run("validator receives effective settings", func(t *testing.T) {
		service, _ := setupSettingsService(t, map[string]string{EnvOpenAIAPIKey: "sk-test"})
		validator := &mockAIValidator{llmErr: errors.New("unreachable")}
		service.aiValidator = validator

		require.NoError(t, service.ValidateEmbeddingConfig())
		require.NotNil(t, validator.embedding)
		assert.Equal(t, "sk-test", validator.embedding.APIKey)

		assert.EqualError(t, service.ValidateLLMConfig(), "unreachable")
		require.NotNil(t, validator.llm)
		assert.Equal(t, domain.AIProviderOpenAI, validator.llm.Provider)
	})
}
