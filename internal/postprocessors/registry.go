package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

// BuilderFunc creates a Chunker from the pipeline settings.
// The embedding service is nil when none is configured.
type BuilderFunc func(settings domain.PipelineSettings, embedder driven.EmbeddingService) (driven.Chunker, error)

// Registry maps chunker strategies to their builders.
// It allows the strategy to be chosen from configuration.
type Registry struct {
	builders map[domain.ChunkerStrategy]BuilderFunc
}

// NewRegistry creates a new chunker registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[domain.ChunkerStrategy]BuilderFunc),
	}
}

// Register adds a chunker builder to the registry.
// The strategy should match the chunker's Name() return value.
func (r *Registry) Register(strategy domain.ChunkerStrategy, builder BuilderFunc) {
	r.builders[strategy] = builder
}

// Build creates the chunker selected by settings.Chunker.
// Returns error if the strategy is not registered.
func (r *Registry) Build(settings domain.PipelineSettings, embedder driven.EmbeddingService) (driven.Chunker, error) {
	builder, ok := r.builders[settings.Chunker]
	if !ok {
		return nil, fmt.Errorf("%w: unknown chunker %q", domain.ErrInvalidInput, settings.Chunker)
	}
	return builder(settings, embedder)
}

// Has returns true if a builder for the strategy is registered.
func (r *Registry) Has(strategy domain.ChunkerStrategy) bool {
	_, ok := r.builders[strategy]
	return ok
}

// Names returns all registered strategies, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for strategy := range r.builders {
		names = append(names, string(strategy))
	}
	sort.Strings(names)
	return names
}
