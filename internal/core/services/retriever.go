package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vantage-cli/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// RetrieverService runs filtered similarity queries for routed questions.
type RetrieverService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
	defaultK int
}

// NewRetrieverService creates a new retriever. defaultK applies when a caller
// passes a non-positive k.
func NewRetrieverService(store driven.VectorStore, embedder driven.EmbeddingService, defaultK int) *RetrieverService {
	if defaultK <= 0 {
		defaultK = domain.DefaultTopK
	}
	return &RetrieverService{
		store:    store,
		embedder: embedder,
		defaultK: defaultK,
	}
}

// Retrieve embeds the question once and queries each routed document with an
// exact document filter. Results for "both" are merged forecast first, then
// ordered by descending score; the sort is stable so ties keep that order.
func (s *RetrieverService) Retrieve(
	ctx context.Context,
	question string,
	decision domain.RoutingDecision,
	kPerDocument int,
) ([]domain.RetrievedMatch, error) {
	logger.Section("Retrieval")

	if s.store == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, domain.ErrVectorIndexUnavailable)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, domain.ErrEmbeddingUnavailable)
	}

	documents := decision.Route.Documents()
	if len(documents) == 0 {
		return nil, fmt.Errorf("%w: %w: route %q", domain.ErrRetrieval, domain.ErrInvalidInput, decision.Route)
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: %w: empty question", domain.ErrRetrieval, domain.ErrInvalidInput)
	}

	k := kPerDocument
	if k <= 0 {
		k = s.defaultK
	}
	logger.Debug("Route: %s, documents: %v, k per document: %d", decision.Route, documents, k)

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		logger.Warn("Question embedding failed: %v", err)
		return nil, fmt.Errorf("%w: embed question: %w", domain.ErrRetrieval, err)
	}

	// One slot per document keeps the merge order independent of which
	// query finishes first.
	results := make([][]driven.VectorHit, len(documents))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range documents {
		g.Go(func() error {
			hits, err := s.store.Query(gctx, vector, driven.VectorFilter{DocumentID: doc}, k)
			if err != nil {
				return fmt.Errorf("query %s: %w", doc, err)
			}
			results[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("Vector query failed: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	var matches []domain.RetrievedMatch
	for i, hits := range results {
		logger.Debug("%s: %d hits", documents[i], len(hits))
		for _, hit := range hits {
			matches = append(matches, domain.RetrievedMatch{
				Chunk: hit.Chunk,
				Score: hit.Similarity,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	for i := range matches {
		matches[i].Rank = i + 1
	}

	logger.Info("Retrieved %d matches", len(matches))
	return matches, nil
}
