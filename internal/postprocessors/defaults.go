package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vantage-cli/internal/postprocessors/chunker"
)

// RegisterDefaults registers the built-in chunkers with the registry.
// Call this during application initialisation.
func RegisterDefaults(r *Registry) {
	r.Register(domain.ChunkerSemantic, buildSemantic)
	r.Register(domain.ChunkerRecursive, buildRecursive)
}

// NewDefaultRegistry returns a registry with the built-in chunkers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// buildSemantic creates the semantic chunker. It needs an embedding service
// and never degrades to another strategy without one. The percentile is
// used as given so run metadata reports the threshold actually applied.
func buildSemantic(settings domain.PipelineSettings, embedder driven.EmbeddingService) (driven.Chunker, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	p := settings.BreakpointPercentile
	if p <= 0 || p > 100 {
		return nil, fmt.Errorf("%w: breakpoint percentile must be in (0, 100], got %v", domain.ErrInvalidInput, p)
	}

	return NewPipeline(chunker.NewSemantic(embedder, chunker.WithBreakpointPercentile(p)), RequirePageMetadata), nil
}

// buildRecursive creates the recursive chunker. Zero sizes fall back to defaults.
func buildRecursive(settings domain.PipelineSettings, _ driven.EmbeddingService) (driven.Chunker, error) {
	var opts []chunker.Option
	if settings.ChunkSize > 0 {
		opts = append(opts, chunker.WithChunkSize(settings.ChunkSize))
	}
	if settings.ChunkOverlap >= 0 {
		opts = append(opts, chunker.WithOverlap(settings.ChunkOverlap))
	}

	return NewPipeline(chunker.NewRecursive(opts...), DropBlank, Renumber, RequirePageMetadata), nil
}
