package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/vantage-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLMService implements driven.LLMService with a scripted reply function.
type mockLLMService struct {
	mu       sync.Mutex
	respond  func(messages []driven.ChatMessage, opts driven.ChatOptions) (string, error)
	messages [][]driven.ChatMessage
	opts     []driven.ChatOptions
}

// newReplyLLM returns an LLM that always answers with reply.
func newReplyLLM(reply string, err error) *mockLLMService {
	return &mockLLMService{
		respond: func(_ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
			return reply, err
		},
	}
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.messages = append(m.messages, messages)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	return m.respond(messages, opts)
}

func (m *mockLLMService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts containing a key of vectors get that vector; others get embedding.
type mockEmbeddingService struct {
	embedding []float32
	vectors   map[string][]float32
	embedErr  error
	batchErr  error
	embeds    int
	batches   int
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	lower := strings.ToLower(text)
	for key, v := range m.vectors {
		if strings.Contains(lower, key) {
			return v
		}
	}
	if m.embedding != nil {
		return m.embedding
	}
	return []float32{1, 0, 0}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.embeds++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batches++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vectorFor(text)
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockPromptStore serves the built-in prompts unless overridden.
type mockPromptStore struct {
	overrides map[string]string
	err       error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if p, ok := m.overrides[name]; ok {
		return p, nil
	}
	if p, ok := file.DefaultPrompt(name); ok {
		return p, nil
	}
	return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
}

func (m *mockPromptStore) Reload() {}

// mockVectorStore wraps canned hits per document and injectable failures.
type mockVectorStore struct {
	mu       sync.Mutex
	hits     map[domain.DocumentID][]driven.VectorHit
	queryErr map[domain.DocumentID]error
	filters  []driven.VectorFilter
	ks       []int
}

func (m *mockVectorStore) Upsert(_ context.Context, _ []domain.Chunk) error {
	return nil
}

func (m *mockVectorStore) Query(_ context.Context, _ []float32, filter driven.VectorFilter, k int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	m.filters = append(m.filters, filter)
	m.ks = append(m.ks, k)
	m.mu.Unlock()

	if err := m.queryErr[filter.DocumentID]; err != nil {
		return nil, err
	}
	hits := m.hits[filter.DocumentID]
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *mockVectorStore) Count(_ context.Context, filter driven.VectorFilter) (int, error) {
	return len(m.hits[filter.DocumentID]), nil
}

func (m *mockVectorStore) Reset(_ context.Context) error {
	return nil
}

func (m *mockVectorStore) Replace(_ context.Context, _ []domain.Chunk) error {
	return nil
}

func (m *mockVectorStore) Close() error {
	return nil
}

// mockExtractor returns canned pages keyed by file name.
type mockExtractor struct {
	pages map[string][]domain.Page
	err   map[string]error
	calls []string
}

func (m *mockExtractor) Extract(_ context.Context, path string) ([]domain.Page, error) {
	name := filepath.Base(path)
	m.calls = append(m.calls, name)
	if err := m.err[name]; err != nil {
		return nil, err
	}
	return m.pages[name], nil
}

func (m *mockExtractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// --- Fixtures ---

func testChunk(doc domain.DocumentID, page, position int, content string) domain.Chunk {
	return domain.Chunk{
		ID:         fmt.Sprintf("%s-%d-%d", doc, page, position),
		DocumentID: doc,
		Title:      string(doc) + "-title",
		Page:       page,
		Position:   position,
		Content:    content,
	}
}

func testHit(doc domain.DocumentID, page int, similarity float64) driven.VectorHit {
	return driven.VectorHit{
		Chunk:      testChunk(doc, page, 0, fmt.Sprintf("%s page %d text", doc, page)),
		Similarity: similarity,
	}
}

func testMatch(doc domain.DocumentID, page int, rank int, content string) domain.RetrievedMatch {
	return domain.RetrievedMatch{
		Chunk: testChunk(doc, page, 0, content),
		Score: 1 / float64(rank),
		Rank:  rank,
	}
}
