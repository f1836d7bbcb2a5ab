// Package chunker splits extracted pages into retrievable passages.
//
// Two strategies are provided. Semantic groups consecutive sentences and
// starts a new chunk where the embedding distance between neighbours is
// unusually large. Recursive cuts pages into bounded windows along the
// coarsest separator that fits; its chunks overlap and are trimmed, so only
// Semantic reproduces the page text exactly. Chunks never span pages.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

// Ensure Recursive implements the interface.
var _ driven.Chunker = (*Recursive)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// defaultSeparators are tried in order, coarsest first. The empty separator
// splits between characters and always fits.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Recursive splits each page into windows of at most chunkSize characters.
// Output is not lossless: consecutive chunks repeat up to overlap characters
// and each chunk is trimmed of surrounding whitespace, so joining the chunks
// does not reproduce the page. Use Semantic where exact coverage matters.
type Recursive struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the recursive chunker.
type Option func(*Recursive)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(r *Recursive) {
		if size > 0 {
			r.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(r *Recursive) {
		if overlap >= 0 {
			r.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy. The empty separator is
// appended when missing so every page can be split.
func WithSeparators(seps ...string) Option {
	return func(r *Recursive) {
		if len(seps) == 0 {
			return
		}
		if seps[len(seps)-1] != "" {
			seps = append(seps, "")
		}
		r.separators = seps
	}
}

// NewRecursive creates a recursive chunker with the given options.
func NewRecursive(opts ...Option) *Recursive {
	r := &Recursive{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: defaultSeparators,
	}

	for _, opt := range opts {
		opt(r)
	}

	// Overlap must leave room for new content in every window
	if r.overlap >= r.chunkSize {
		r.overlap = r.chunkSize / 4
	}

	return r
}

// Name returns the strategy name.
func (r *Recursive) Name() string {
	return string(domain.ChunkerRecursive)
}

// Chunk splits every page of the document independently.
func (r *Recursive) Chunk(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i, text := range r.split(page.Text, r.separators) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Title:      doc.Title,
				Page:       page.Number,
				Position:   i,
				Content:    text,
			})
		}
	}

	return chunks, nil
}

// split cuts text on the first separator present, recursing into pieces that
// are still too large with the finer separators.
func (r *Recursive) split(text string, separators []string) []string {
	sep := ""
	var finer []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			finer = separators[i+1:]
			break
		}
	}

	var out, fitting []string
	for _, piece := range splitKeep(text, sep) {
		if utf8.RuneCountInString(piece) <= r.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			out = append(out, r.merge(fitting)...)
			fitting = nil
		}
		if len(finer) == 0 {
			out = appendTrimmed(out, piece)
			continue
		}
		out = append(out, r.split(piece, finer)...)
	}
	if len(fitting) > 0 {
		out = append(out, r.merge(fitting)...)
	}

	return out
}

// merge packs pieces into windows no longer than chunkSize. Each new window
// starts with the trailing pieces of the previous one, up to overlap characters.
func (r *Recursive) merge(pieces []string) []string {
	var out, window []string
	total := 0

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > r.chunkSize && len(window) > 0 {
			out = appendTrimmed(out, strings.Join(window, ""))
			for len(window) > 0 && (total > r.overlap || total+n > r.chunkSize) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += n
	}
	if len(window) > 0 {
		out = appendTrimmed(out, strings.Join(window, ""))
	}

	return out
}

// splitKeep splits text after each separator, keeping the separator on the
// preceding piece so the pieces concatenate back to text.
func splitKeep(text, sep string) []string {
	if sep == "" {
		pieces := make([]string, 0, utf8.RuneCountInString(text))
		for _, c := range text {
			pieces = append(pieces, string(c))
		}
		return pieces
	}
	return strings.SplitAfter(text, sep)
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}
