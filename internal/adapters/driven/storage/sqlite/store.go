package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/vantage-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// dbFileName is the database file inside the store directory.
const dbFileName = "vectors.db"

// Store is a SQLite-backed vector store. Chunks are persisted with their
// embeddings and metadata; similarity is computed over the filtered rows.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified directory.
// If dataDir is empty, defaults to ~/.vantage/index/vectors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vantage", "index")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// Open database with WAL mode so status reads never block on a writer
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_chunks.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert stores chunks in a single transaction. Either every chunk is
// written or none is.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return writeChunks(ctx, tx, chunks)
	})
}

// Replace deletes every stored chunk and writes chunks in the same
// transaction, so a failed write keeps the previous index.
func (s *Store) Replace(ctx context.Context, chunks []domain.Chunk) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := clearChunks(ctx, tx); err != nil {
			return err
		}
		return writeChunks(ctx, tx, chunks)
	})
}

// Reset removes every stored chunk.
func (s *Store) Reset(ctx context.Context) error {
	return clearChunks(ctx, s.db)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func clearChunks(ctx context.Context, db execer) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("resetting chunks: %w", err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func writeChunks(ctx context.Context, tx *sql.Tx, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, title, page, position, content, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			title = excluded.title,
			page = excluded.page,
			position = excluded.position,
			content = excluded.content,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		if !c.DocumentID.IsValid() {
			return fmt.Errorf("%w: chunk %s has document %q", domain.ErrInvalidInput, c.ID, c.DocumentID)
		}
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}

		if _, err := stmt.ExecContext(ctx, c.ID, string(c.DocumentID), c.Title, c.Page,
			c.Position, c.Content, float32SliceToBytes(c.Embedding), len(c.Embedding)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}
	return nil
}

// Query ranks the chunks that pass the filter by cosine similarity to vector.
// Filtering happens in SQL before any scoring, so non-matching rows are never
// considered.
func (s *Store) Query(
	ctx context.Context,
	vector []float32,
	filter driven.VectorFilter,
	k int,
) ([]driven.VectorHit, error) {
	if k <= 0 || len(vector) == 0 {
		return nil, nil
	}

	query := `SELECT id, document_id, title, page, position, content, embedding FROM chunks`
	var args []any
	if filter.DocumentID != "" {
		query += ` WHERE document_id = ?`
		args = append(args, string(filter.DocumentID))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		if len(chunk.Embedding) != len(vector) {
			return nil, fmt.Errorf("%w: query has %d dimensions, chunk %s has %d",
				domain.ErrInvalidInput, len(vector), chunk.ID, len(chunk.Embedding))
		}

		similarity := domain.CosineSimilarity(vector, chunk.Embedding)
		chunk.Embedding = nil
		hits = append(hits, driven.VectorHit{Chunk: *chunk, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored chunks matching the filter.
func (s *Store) Count(ctx context.Context, filter driven.VectorFilter) (int, error) {
	query := `SELECT COUNT(*) FROM chunks`
	var args []any
	if filter.DocumentID != "" {
		query += ` WHERE document_id = ?`
		args = append(args, string(filter.DocumentID))
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// sortHits orders hits by descending similarity. Ties fall back to page and
// position so repeated queries return the same order.
func sortHits(hits []driven.VectorHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].Chunk.Page != hits[j].Chunk.Page {
			return hits[i].Chunk.Page < hits[j].Chunk.Page
		}
		return hits[i].Chunk.Position < hits[j].Chunk.Position
	})
}

// float32SliceToBytes converts []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanChunk scans a chunk from a rows iterator.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var documentID string
	var embedding []byte

	if err := rows.Scan(&chunk.ID, &documentID, &chunk.Title, &chunk.Page,
		&chunk.Position, &chunk.Content, &embedding); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.DocumentID = domain.DocumentID(documentID)
	chunk.Embedding = bytesToFloat32Slice(embedding)
	return &chunk, nil
}
