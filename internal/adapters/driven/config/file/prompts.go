package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptRouterSystem: `You are a document routing assistant for a question answering system over two J.P. Morgan investment outlooks.

You have access to two documents:
1. Forecast (Outlook 2025): predictions and expectations for 2025, published at the start of the year.
2. Mid-Year Outlook 2025: the review of what actually happened by mid-2025, including performance updates.

Decide which document(s) should be searched to answer the user's question.

Routing rules:
- Questions about predictions, forecasts, expectations, or what was expected at the start of 2025: route to "forecast".
- Questions about actual results, what happened, mid-year reality, or current performance: route to "midyear".
- Questions asking for a comparison of forecast against reality, or mentioning both documents: route to "both".
- If the question is unclear, choose "both" so nothing relevant is missed.

Respond with the route and a one sentence rationale.`,

	driven.PromptRouterUser: `Question: %s

Determine which document(s) to query: forecast, midyear, or both.`,

	driven.PromptSynthesisSystem: `You are a financial analyst assistant. Answer strictly from the document excerpts provided in the context.

Rules:
1. Only use information from the provided context. Never use outside knowledge or make assumptions.
2. Cite every factual claim with the document name and page number.
3. If information is not in the context, explicitly state "This is not mentioned in the provided documents".
4. Keep forecast and actual results apart. Label which document each piece of information comes from.
5. Be precise. Quote exact phrases where possible, especially stock names, percentages and specific claims.

Citation format: put [Document Name, Page X] after each factual statement.`,

	driven.PromptSynthesisUser: `Context from retrieved documents:

%s

---

Question: %s

Provide a comprehensive answer with citations for every factual claim. If certain information is not available in the context, explicitly state so.`,

	driven.PromptComparison: `This is a comparison question. Structure the answer in two clearly separated parts: start one with "Forecast said..." and the other with "Mid-year reality shows...". Then state whether the forecast held up.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.vantage/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".vantage", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// DefaultPrompt returns the embedded default for a prompt name.
func DefaultPrompt(name string) (string, bool) {
	prompt, ok := defaultPrompts[name]
	return prompt, ok
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Keep the first value cached by a concurrent load
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Vantage Prompts

This directory contains the prompts Vantage sends to the language model.

## Files

- ` + "`router_system.txt`" + ` - Describes both outlooks and the routing rules
- ` + "`router_user.txt`" + ` - Asks for a routing decision (` + "`%s`" + ` = question)
- ` + "`synthesis_system.txt`" + ` - Grounding and citation rules for answers
- ` + "`synthesis_user.txt`" + ` - Context and question (` + "`%s`" + ` = context, ` + "`%s`" + ` = question)
- ` + "`comparison.txt`" + ` - Extra instruction for forecast vs mid-year questions

## Customisation

Edit any file to change model behaviour. Changes take effect on the next run.
Keep the ` + "`%s`" + ` placeholders in the same order.
`
	return os.WriteFile(path, []byte(content), 0600)
}
