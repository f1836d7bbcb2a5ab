package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vantage-cli/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

func TestServices_Close_NilServices(t *testing.T) {
	svc := &Services{}
	// Should not panic
	svc.Close()
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantErr     bool
		errContains string
	}{
		{
			name:        "nil settings",
			settings:    nil,
			wantErr:     true,
			errContains: "not configured",
		},
		{
			name:        "missing api key",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:     true,
			errContains: "not configured",
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantErr:     true,
			errContains: "anthropic does not support embeddings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			svc.Close()
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{RequestsPerSecond: 5})
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantErr  bool
	}{
		{"nil settings", nil, true},
		{"unknown provider", &domain.LLMSettings{Provider: "unknown", APIKey: "k"}, true},
		{"ollama", &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}, false},
		{"openai", &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"}, false},
		{"anthropic", &domain.LLMSettings{
			Provider: domain.AIProviderAnthropic, APIKey: "k", Model: "claude-3-5-haiku-latest",
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings, limiter)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			svc.Close()
		})
	}
}

func TestCreateOllamaEmbedding_KnownDimensions(t *testing.T) {
	svc := createOllamaEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "all-minilm"})
	assert.Equal(t, 384, svc.Dimensions())
}

func TestCreateOllamaEmbedding_UnknownModel(t *testing.T) {
	svc := createOllamaEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "custom"})
	assert.Equal(t, 768, svc.Dimensions())
}

func TestNewServices_WithoutValidation(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding.APIKey = "k"
	settings.LLM.APIKey = "k"

	svc, err := NewServices(context.Background(), &settings, false)
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, "text-embedding-3-small", svc.Embedding.ModelName())
	assert.Equal(t, "gpt-4o-mini", svc.LLM.ModelName())
}

func TestNewServices_MissingEmbeddingKey(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.LLM.APIKey = "k"

	_, err := NewServices(context.Background(), &settings, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestNewServices_MissingLLMKey(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding.APIKey = "k"

	_, err := NewServices(context.Background(), &settings, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestNewServices_ValidatesConnectivity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}

	svc, err := NewServices(context.Background(), &settings, true)
	require.NoError(t, err)
	svc.Close()
}

func TestNewServices_UnreachableLLM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1"}

	_, err := NewServices(context.Background(), &settings, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "service unreachable")
}

func TestValidateLLMConfig_OllamaReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL})
	assert.NoError(t, err)
}

func TestValidateEmbeddingConfig_Unreachable(t *testing.T) {
	err := ValidateEmbeddingConfig(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://127.0.0.1:1",
	})
	assert.Error(t, err)
}
