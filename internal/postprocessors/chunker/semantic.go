package chunker

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

// Ensure Semantic implements the interface.
var _ driven.Chunker = (*Semantic)(nil)

// DefaultBreakpointPercentile is the default split threshold percentile.
const DefaultBreakpointPercentile = domain.DefaultBreakpointPercentile

// Semantic groups consecutive sentences of a page and breaks where the cosine
// distance between neighbouring sentences exceeds a percentile of all
// distances in the document. Chunk contents concatenate back to the page text.
type Semantic struct {
	embedder   driven.EmbeddingService
	percentile float64
}

// SemanticOption configures the semantic chunker.
type SemanticOption func(*Semantic)

// WithBreakpointPercentile sets the split threshold percentile in (0, 100].
func WithBreakpointPercentile(p float64) SemanticOption {
	return func(s *Semantic) {
		if p > 0 && p <= 100 {
			s.percentile = p
		}
	}
}

// NewSemantic creates a semantic chunker that embeds sentences with embedder.
func NewSemantic(embedder driven.EmbeddingService, opts ...SemanticOption) *Semantic {
	s := &Semantic{
		embedder:   embedder,
		percentile: DefaultBreakpointPercentile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the strategy name.
func (s *Semantic) Name() string {
	return string(domain.ChunkerSemantic)
}

// pageUnits holds one page's sentences and the distances between neighbours.
type pageUnits struct {
	page      domain.Page
	units     []string
	distances []float64
}

// Chunk splits every page at semantic breakpoints. Sentences of each page are
// embedded in one batch; the threshold is computed over the whole document.
func (s *Semantic) Chunk(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	pages := make([]pageUnits, 0, len(doc.Pages))
	var all []float64

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		units := splitSentences(page.Text)
		if len(units) == 0 {
			continue
		}

		pu := pageUnits{page: page, units: units}
		if len(units) > 1 {
			distances, err := s.distances(ctx, units)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", page.Number, err)
			}
			pu.distances = distances
			all = append(all, distances...)
		}
		pages = append(pages, pu)
	}

	threshold := Percentile(all, s.percentile)

	var chunks []domain.Chunk
	for _, pu := range pages {
		for i, content := range group(pu.units, pu.distances, threshold) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Title:      doc.Title,
				Page:       pu.page.Number,
				Position:   i,
				Content:    content,
			})
		}
	}

	return chunks, nil
}

// distances embeds the units and returns the cosine distance between each
// unit and the next.
func (s *Semantic) distances(ctx context.Context, units []string) ([]float64, error) {
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = strings.TrimSpace(u)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding sentences: %w", err)
	}
	if len(vectors) != len(units) {
		return nil, fmt.Errorf("embedding sentences: expected %d vectors, got %d", len(units), len(vectors))
	}

	distances := make([]float64, len(units)-1)
	for i := range distances {
		distances[i] = 1 - domain.CosineSimilarity(vectors[i], vectors[i+1])
	}
	return distances, nil
}

// group joins units into chunks, breaking after unit i when distances[i]
// exceeds threshold.
func group(units []string, distances []float64, threshold float64) []string {
	var out []string
	var b strings.Builder

	for i, u := range units {
		b.WriteString(u)
		if i < len(distances) && distances[i] > threshold {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

// Percentile returns the p-th percentile of values using linear
// interpolation between closest ranks. Returns 0 for no values.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}

// splitSentences cuts text into sentence units. A unit ends at whitespace that
// follows sentence punctuation or at a blank line, and carries that whitespace
// with it, so the units concatenate back to text. Blank text yields nil.
func splitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var units []string
	start := 0

	for i := 0; i < len(runes); {
		if !unicode.IsSpace(runes[i]) {
			i++
			continue
		}

		j, newlines := i, 0
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			if runes[j] == '\n' {
				newlines++
			}
			j++
		}

		body := runes[start:i]
		if j < len(runes) && hasText(body) && (endsSentence(body) || newlines >= 2) {
			units = append(units, string(runes[start:j]))
			start = j
		}
		i = j
	}

	if start < len(runes) {
		units = append(units, string(runes[start:]))
	}
	return units
}

// endsSentence reports whether s ends with terminal punctuation, ignoring
// closing quotes and brackets.
func endsSentence(s []rune) bool {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '"', '\'', ')', ']', '”', '’':
			continue
		case '.', '!', '?':
			return true
		default:
			return false
		}
	}
	return false
}

func hasText(s []rune) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
