package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if the provider offers an embeddings API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkerStrategy selects how pages are split into chunks.
type ChunkerStrategy string

// Available chunker strategies.
const (
	// ChunkerSemantic splits at percentile breakpoints of sentence embedding distance.
	ChunkerSemantic ChunkerStrategy = "semantic"

	// ChunkerRecursive splits by separators into fixed-size windows with overlap.
	ChunkerRecursive ChunkerStrategy = "recursive"
)

// IsValid returns true if the strategy is recognised.
func (c ChunkerStrategy) IsValid() bool {
	return c == ChunkerSemantic || c == ChunkerRecursive
}

// String returns the string representation.
func (c ChunkerStrategy) String() string {
	return string(c)
}

// PipelineSettings holds chunking and retrieval parameters.
type PipelineSettings struct {
	// Chunker is the chunking strategy.
	Chunker ChunkerStrategy

	// BreakpointPercentile is the semantic chunker's split threshold (0-100].
	BreakpointPercentile float64

	// ChunkSize is the recursive chunker's window in characters.
	ChunkSize int

	// ChunkOverlap is the recursive chunker's overlap in characters.
	ChunkOverlap int

	// TopK is the number of matches retrieved per document.
	TopK int
}

// PathSettings holds filesystem locations.
type PathSettings struct {
	// DataDir holds the source PDFs.
	DataDir string

	// StoreDir holds the persisted vector store.
	StoreDir string

	// OutputDir receives analysis result files.
	OutputDir string
}

// RateLimitSettings throttles calls to remote model services.
type RateLimitSettings struct {
	// RequestsPerSecond is the sustained request rate. Zero disables throttling.
	RequestsPerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Pipeline holds chunking and retrieval parameters.
	Pipeline PipelineSettings

	// Paths holds filesystem locations.
	Paths PathSettings

	// RateLimit throttles remote model calls.
	RateLimit RateLimitSettings
}

// Default pipeline parameters.
const (
	DefaultBreakpointPercentile = 85.0
	DefaultChunkSize            = 1000
	DefaultChunkOverlap         = 200
	DefaultTopK                 = 5
)

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; they come from the config file or the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Pipeline: PipelineSettings{
			Chunker:              ChunkerSemantic,
			BreakpointPercentile: DefaultBreakpointPercentile,
			ChunkSize:            DefaultChunkSize,
			ChunkOverlap:         DefaultChunkOverlap,
			TopK:                 DefaultTopK,
		},
		Paths: PathSettings{
			DataDir:   "data/pdfs",
			StoreDir:  "data/index",
			OutputDir: "outputs",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns known dimensions for embedding models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
