package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vantage-cli/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// embedBatchSize caps the number of texts sent in one embedding request.
const embedBatchSize = 96

// IngestionService builds the vector index from the PDFs in the data directory.
type IngestionService struct {
	extractor driven.DocumentExtractor
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	dataDir   string
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	extractor driven.DocumentExtractor,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	dataDir string,
) *IngestionService {
	return &IngestionService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		dataDir:   dataDir,
	}
}

// Ingest extracts, chunks and embeds both documents, then replaces the index
// contents in one write. Any failure leaves the index as it was.
func (s *IngestionService) Ingest(ctx context.Context, opts driving.IngestOptions) (*driving.IngestResult, error) {
	logger.Section("Ingestion")

	if s.store == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, domain.ErrVectorIndexUnavailable)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, domain.ErrEmbeddingUnavailable)
	}

	existing, err := s.store.Count(ctx, driven.VectorFilter{})
	if err != nil {
		return nil, fmt.Errorf("%w: count chunks: %w", domain.ErrIngestion, err)
	}
	if existing > 0 && opts.SkipIfPresent && !opts.Force {
		logger.Info("Index already holds %d chunks, skipping ingestion", existing)
		return &driving.IngestResult{Skipped: true, TotalChunks: existing}, nil
	}

	paths, err := s.discover()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}

	result := &driving.IngestResult{}
	var all []domain.Chunk

	docs := domain.AllDocuments()
	for i, id := range docs {
		logger.Step(i+1, len(docs), "Preparing %s", id.Label())
		doc, chunks, err := s.prepare(ctx, id, paths[id])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrIngestion, id, err)
		}
		all = append(all, chunks...)
		result.Documents = append(result.Documents, driving.IngestedDocument{
			ID:     doc.ID,
			Title:  doc.Title,
			Pages:  doc.PageCount(),
			Chunks: len(chunks),
		})
	}

	if err := s.write(ctx, existing, all); err != nil {
		return nil, fmt.Errorf("%w: store chunks: %w", domain.ErrIngestion, err)
	}

	result.TotalChunks = len(all)
	logger.Info("Ingested %d chunks", result.TotalChunks)
	return result, nil
}

// write fills an empty index or swaps out a populated one in one write.
func (s *IngestionService) write(ctx context.Context, existing int, chunks []domain.Chunk) error {
	if existing == 0 {
		return s.store.Upsert(ctx, chunks)
	}
	logger.Debug("Replacing %d indexed chunks", existing)
	return s.store.Replace(ctx, chunks)
}

// Status reports the stored chunk count per document.
func (s *IngestionService) Status(ctx context.Context) (*driving.IndexStatus, error) {
	if s.store == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	status := &driving.IndexStatus{Chunks: make(map[domain.DocumentID]int)}
	for _, id := range domain.AllDocuments() {
		n, err := s.store.Count(ctx, driven.VectorFilter{DocumentID: id})
		if err != nil {
			return nil, fmt.Errorf("count %s chunks: %w", id, err)
		}
		status.Chunks[id] = n
		status.Total += n
	}
	return status, nil
}

// discover classifies the supported files in the data directory. Both
// documents must be present.
func (s *IngestionService) discover() (map[domain.DocumentID]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrNoDocuments, s.dataDir, err)
	}

	supported := make(map[string]bool)
	for _, ext := range s.extractor.SupportedExtensions() {
		supported[strings.ToLower(ext)] = true
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && supported[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	paths := make(map[domain.DocumentID]string)
	for _, name := range names {
		id, ok := domain.ClassifyDocument(name)
		if !ok {
			logger.Warn("Skipping unrecognised file %s", name)
			continue
		}
		if prev, dup := paths[id]; dup {
			logger.Warn("Ignoring %s: %s already provides the %s document", name, filepath.Base(prev), id)
			continue
		}
		paths[id] = filepath.Join(s.dataDir, name)
		logger.Debug("Found %s document: %s", id, name)
	}

	var missing []string
	for _, id := range domain.AllDocuments() {
		if _, ok := paths[id]; !ok {
			missing = append(missing, id.Label())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w in %s: missing %s", domain.ErrNoDocuments, s.dataDir, strings.Join(missing, " and "))
	}

	return paths, nil
}

// prepare extracts, chunks and embeds one document.
func (s *IngestionService) prepare(ctx context.Context, id domain.DocumentID, path string) (*domain.Document, []domain.Chunk, error) {
	pages, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("extract: %w", err)
	}

	doc := &domain.Document{
		ID:    id,
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:  path,
		Pages: pages,
	}
	logger.Debug("%s: %d pages", id, doc.PageCount())

	chunks, err := s.chunker.Chunk(ctx, doc)
	if err != nil {
		return nil, nil, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("chunk: no chunks produced")
	}
	logger.Debug("%s: %d chunks (%s)", id, len(chunks), s.chunker.Name())

	if err := s.embed(ctx, chunks); err != nil {
		return nil, nil, fmt.Errorf("embed: %w", err)
	}

	return doc, chunks, nil
}

// embed fills in chunk embeddings in batches.
func (s *IngestionService) embed(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}
