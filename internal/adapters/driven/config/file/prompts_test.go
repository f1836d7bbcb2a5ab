package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

func TestPromptStore_ImplementsInterface(t *testing.T) {
	var _ driven.PromptStore = (*PromptStore)(nil)
}

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vantage", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptRouterSystem)
	require.NoError(t, err)

	files := []string{
		"router_system.txt",
		"router_user.txt",
		"synthesis_system.txt",
		"synthesis_user.txt",
		"comparison.txt",
		"README.md",
	}
	for _, f := range files {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestDefaultPrompts_Placeholders(t *testing.T) {
	tests := []struct {
		name         string
		placeholders int
	}{
		{driven.PromptRouterSystem, 0},
		{driven.PromptRouterUser, 1},
		{driven.PromptSynthesisSystem, 0},
		{driven.PromptSynthesisUser, 2},
		{driven.PromptComparison, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, ok := DefaultPrompt(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.placeholders, countVerbs(prompt))
		})
	}
}

func countVerbs(s string) int {
	count := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '%' && s[i+1] == 's' {
			count++
		}
	}
	return count
}

func TestDefaultPrompts_Content(t *testing.T) {
	system, _ := DefaultPrompt(driven.PromptSynthesisSystem)
	assert.Contains(t, system, "This is not mentioned in the provided documents")
	assert.Contains(t, system, "[Document Name, Page X]")

	comparison, _ := DefaultPrompt(driven.PromptComparison)
	assert.Contains(t, comparison, "Forecast said...")
	assert.Contains(t, comparison, "Mid-year reality shows...")

	user, _ := DefaultPrompt(driven.PromptSynthesisUser)
	rendered := fmt.Sprintf(user, "CTX", "Q?")
	assert.Contains(t, rendered, "CTX")
	assert.Contains(t, rendered, "Question: Q?")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	customContent := "Route this: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "router_user.txt"), []byte(customContent), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRouterUser)
	require.NoError(t, err)
	assert.Equal(t, customContent, prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, _ = store.Load(driven.PromptComparison) // Trigger init
	require.NoError(t, os.Remove(filepath.Join(dir, "comparison.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptComparison)
	require.NoError(t, err)
	want, _ := DefaultPrompt(driven.PromptComparison)
	assert.Equal(t, want, prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Load_InitFailureFallsBack(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRouterSystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, "routing")

	_, err = store.Load("nonexistent_prompt")
	assert.Error(t, err)
}

func TestPromptStore_Reload_ClearsCache(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptRouterUser)
	require.NoError(t, err)

	modified := "modified: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "router_user.txt"), []byte(modified), 0600))

	cached, err := store.Load(driven.PromptRouterUser)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptRouterUser)
	require.NoError(t, err)
	assert.Equal(t, modified, fresh)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptSynthesisSystem)
			assert.NoError(t, err)
			results[n] = prompt
		}(i)
	}
	wg.Wait()

	for _, prompt := range results {
		assert.Equal(t, results[0], prompt)
	}
}

func TestPromptStore_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comparison.txt"), []byte("\n\n  compare  \n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptComparison)
	require.NoError(t, err)
	assert.Equal(t, "compare", prompt)
}
