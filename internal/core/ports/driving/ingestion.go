package driving

import (
	"context"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// IngestOptions controls an ingestion run.
type IngestOptions struct {
	// Force resets the index before rebuilding it.
	Force bool

	// SkipIfPresent leaves a populated index untouched.
	SkipIfPresent bool
}

// IngestResult summarises an ingestion run.
type IngestResult struct {
	// Skipped is true when the index already held chunks and nothing was done.
	Skipped bool

	// Documents lists the ingested documents.
	Documents []IngestedDocument

	// TotalChunks is the number of chunks written.
	TotalChunks int
}

// IngestedDocument describes one ingested document.
type IngestedDocument struct {
	ID     domain.DocumentID
	Title  string
	Pages  int
	Chunks int
}

// IndexStatus reports what the vector store currently holds.
type IndexStatus struct {
	// Chunks maps each document to its stored chunk count.
	Chunks map[domain.DocumentID]int

	// Total is the number of stored chunks.
	Total int
}

// IsEmpty returns true if nothing has been ingested.
func (s IndexStatus) IsEmpty() bool {
	return s.Total == 0
}

// IngestionService builds the vector index from the source documents.
type IngestionService interface {
	// Ingest extracts, chunks, embeds and stores both documents.
	// Errors wrap domain.ErrIngestion and nothing is committed on failure.
	Ingest(ctx context.Context, opts IngestOptions) (*IngestResult, error)

	// Status reports the current index contents.
	Status(ctx context.Context) (*IndexStatus, error)
}
