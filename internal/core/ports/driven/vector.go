package driven

import (
	"context"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// VectorStore persists chunk embeddings with their document and page metadata
// and answers filtered similarity queries.
type VectorStore interface {
	// Upsert stores chunks with their embeddings. The write is all-or-nothing.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Query returns at most k hits matching the filter, by descending similarity.
	// Hits whose metadata fails the filter are never returned.
	Query(ctx context.Context, vector []float32, filter VectorFilter, k int) ([]VectorHit, error)

	// Count returns the number of stored chunks matching the filter.
	Count(ctx context.Context, filter VectorFilter) (int, error)

	// Reset removes every stored chunk.
	Reset(ctx context.Context) error

	// Replace swaps the entire contents for chunks in one write. On error the
	// previous contents remain. An empty slice clears the store.
	Replace(ctx context.Context, chunks []domain.Chunk) error

	// Close releases resources.
	Close() error
}

// VectorFilter restricts queries to matching metadata. The zero value matches everything.
type VectorFilter struct {
	// DocumentID restricts results to one document.
	DocumentID domain.DocumentID
}

// Matches reports whether a chunk satisfies the filter.
func (f VectorFilter) Matches(c *domain.Chunk) bool {
	return f.DocumentID == "" || c.DocumentID == f.DocumentID
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Chunk is the matched chunk, embedding omitted.
	Chunk domain.Chunk

	// Similarity is the cosine similarity score.
	Similarity float64
}
