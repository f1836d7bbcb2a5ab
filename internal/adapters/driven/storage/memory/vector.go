// Package memory provides an in-memory implementation of driven.VectorStore.
//
// The store is used by the --memory flag for throwaway runs and by service
// tests. Nothing is persisted; every process starts with an empty index.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
	order  []string
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		chunks: make(map[string]domain.Chunk),
	}
}

// Upsert stores chunks. Validation runs before any write so a bad batch
// leaves the store untouched.
func (s *VectorStore) Upsert(_ context.Context, chunks []domain.Chunk) error {
	if err := validate(chunks); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = put(s.chunks, s.order, chunks)
	return nil
}

// Replace builds the new contents aside and swaps them in under the lock.
func (s *VectorStore) Replace(_ context.Context, chunks []domain.Chunk) error {
	if err := validate(chunks); err != nil {
		return err
	}

	next := make(map[string]domain.Chunk, len(chunks))
	order := put(next, nil, chunks)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks, s.order = next, order
	return nil
}

func validate(chunks []domain.Chunk) error {
	for i := range chunks {
		if !chunks[i].DocumentID.IsValid() {
			return fmt.Errorf("%w: chunk %s has document %q",
				domain.ErrInvalidInput, chunks[i].ID, chunks[i].DocumentID)
		}
		if len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[i].ID)
		}
	}
	return nil
}

// put copies chunks into dst and returns order extended with new ids.
func put(dst map[string]domain.Chunk, order []string, chunks []domain.Chunk) []string {
	for _, chunk := range chunks {
		if _, exists := dst[chunk.ID]; !exists {
			order = append(order, chunk.ID)
		}
		chunk.Embedding = append([]float32(nil), chunk.Embedding...)
		dst[chunk.ID] = chunk
	}
	return order
}

// Query returns at most k chunks matching the filter, by descending similarity.
func (s *VectorStore) Query(
	_ context.Context,
	vector []float32,
	filter driven.VectorFilter,
	k int,
) ([]driven.VectorHit, error) {
	if k <= 0 || len(vector) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(s.order))
	for _, id := range s.order {
		chunk := s.chunks[id]
		if !filter.Matches(&chunk) {
			continue
		}
		if len(chunk.Embedding) != len(vector) {
			return nil, fmt.Errorf("%w: query has %d dimensions, chunk %s has %d",
				domain.ErrInvalidInput, len(vector), chunk.ID, len(chunk.Embedding))
		}
		similarity := domain.CosineSimilarity(vector, chunk.Embedding)
		chunk.Embedding = nil
		hits = append(hits, driven.VectorHit{Chunk: chunk, Similarity: similarity})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].Chunk.Page != hits[j].Chunk.Page {
			return hits[i].Chunk.Page < hits[j].Chunk.Page
		}
		return hits[i].Chunk.Position < hits[j].Chunk.Position
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of chunks matching the filter.
func (s *VectorStore) Count(_ context.Context, filter driven.VectorFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, chunk := range s.chunks {
		if filter.Matches(&chunk) {
			count++
		}
	}
	return count, nil
}

// Reset removes every chunk.
func (s *VectorStore) Reset(ctx context.Context) error {
	return s.Replace(ctx, nil)
}

// Close is a no-op for the in-memory store.
func (s *VectorStore) Close() error {
	return nil
}
