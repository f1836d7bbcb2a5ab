package driving

import (
	"context"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// Router classifies a question by the document(s) it concerns.
type Router interface {
	// Route returns the routing decision or an error wrapping domain.ErrRouting.
	// It never falls back to a guessed category.
	Route(ctx context.Context, question string) (domain.RoutingDecision, error)
}

// Retriever fetches matches for a routed question.
type Retriever interface {
	// Retrieve returns at most kPerDocument matches per routed document,
	// ordered by descending score. Errors wrap domain.ErrRetrieval.
	Retrieve(
		ctx context.Context,
		question string,
		decision domain.RoutingDecision,
		kPerDocument int,
	) ([]domain.RetrievedMatch, error)
}

// Synthesizer produces a grounded, cited answer from retrieved matches.
type Synthesizer interface {
	// Synthesize returns the answer and citations or an error wrapping domain.ErrSynthesis.
	// Citations only reference documents and pages present in matches.
	Synthesize(
		ctx context.Context,
		question string,
		decision domain.RoutingDecision,
		matches []domain.RetrievedMatch,
	) (domain.Synthesis, error)
}
