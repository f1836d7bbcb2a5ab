// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides chat-completion operations for routing and synthesis.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4o-mini)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a conversation and returns the assistant's reply.
	// When opts.Schema is set the reply must be a JSON object matching it.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// It is always sent, so the zero value requests deterministic output.
	Temperature float64

	// Schema constrains the reply to structured JSON. Nil means free text.
	Schema *ResponseSchema
}

// ResponseSchema describes a structured-output constraint.
type ResponseSchema struct {
	// Name identifies the schema to the provider.
	Name string

	// Description is passed to providers that accept one.
	Description string

	// Schema is a JSON Schema object.
	Schema map[string]any
}
