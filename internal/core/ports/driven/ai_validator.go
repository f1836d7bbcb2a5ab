package driven

import "github.com/custodia-labs/vantage-cli/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns an error if the configuration is incomplete or the provider is unreachable.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns an error if the configuration is incomplete or the provider is unreachable.
	ValidateLLM(config *domain.LLMSettings) error
}
