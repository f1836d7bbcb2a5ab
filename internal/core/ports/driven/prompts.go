package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptRouterSystem describes the two documents and the routing rules.
	// This prompt has no format placeholders.
	PromptRouterSystem = "router_system"

	// PromptRouterUser asks for a routing decision.
	// The template expects a %s placeholder for the question.
	PromptRouterUser = "router_user"

	// PromptSynthesisSystem sets the grounding and citation rules.
	// This prompt has no format placeholders.
	PromptSynthesisSystem = "synthesis_system"

	// PromptSynthesisUser carries the retrieved context and the question.
	// The template expects %s (context) and %s (question) placeholders.
	PromptSynthesisUser = "synthesis_user"

	// PromptComparison is appended for questions routed to both documents.
	// This prompt has no format placeholders.
	PromptComparison = "comparison"
)
