package postprocessors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.Chunker = (*Pipeline)(nil)

// Step transforms the chunks produced for a document.
type Step func(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)

// Pipeline runs a chunker and then each step in order.
// It implements the Chunker interface so callers need not know about steps.
type Pipeline struct {
	chunker driven.Chunker
	steps   []Step
}

// NewPipeline creates a pipeline around chunker.
// Steps are executed in the order provided.
func NewPipeline(chunker driven.Chunker, steps ...Step) *Pipeline {
	return &Pipeline{
		chunker: chunker,
		steps:   steps,
	}
}

// Name returns the wrapped chunker's name.
func (p *Pipeline) Name() string {
	return p.chunker.Name()
}

// Chunk runs the document through the chunker and all steps.
func (p *Pipeline) Chunk(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	chunks, err := p.chunker.Chunk(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunker %s: %w", p.chunker.Name(), err)
	}

	for i, step := range p.steps {
		chunks, err = step(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return chunks, nil
}

// Add appends a step to the pipeline.
func (p *Pipeline) Add(step Step) {
	p.steps = append(p.steps, step)
}

// Len returns the number of steps in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// DropBlank removes chunks with no visible text.
func DropBlank(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	kept := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) != "" {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

// Renumber assigns consecutive positions within each page, keeping order.
func Renumber(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	next := make(map[int]int)
	for i := range chunks {
		page := chunks[i].Page
		chunks[i].Position = next[page]
		next[page]++
	}
	return chunks, nil
}

// RequirePageMetadata rejects chunks that lost their document or page.
func RequirePageMetadata(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for _, c := range chunks {
		if c.DocumentID != doc.ID {
			return nil, fmt.Errorf("%w: chunk %s belongs to %q, not %q", domain.ErrInvalidInput, c.ID, c.DocumentID, doc.ID)
		}
		if c.Page < 1 {
			return nil, fmt.Errorf("%w: chunk %s has no page", domain.ErrInvalidInput, c.ID)
		}
	}
	return chunks, nil
}
