package driven

import (
	"context"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// Chunker splits a document's pages into retrievable passages.
// Every returned chunk references exactly one page of the input document.
type Chunker interface {
	// Name returns the strategy name for logging and configuration.
	Name() string

	// Chunk splits the document. Chunks are returned in page order.
	Chunk(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
