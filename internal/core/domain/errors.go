package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Routing and synthesis are impossible without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither ingestion nor retrieval can run without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector store is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrNoDocuments indicates the data directory lacks a forecast or mid-year PDF.
	ErrNoDocuments = errors.New("source documents not found")

	// ErrIndexEmpty indicates queries were attempted before ingestion.
	ErrIndexEmpty = errors.New("vector index is empty")

	// Pipeline Errors.

	// ErrIngestion indicates extraction, chunking or embedding failed during index build.
	// Nothing is committed for the affected run.
	ErrIngestion = errors.New("ingestion failed")

	// ErrRouting indicates the question could not be classified.
	// It aborts that question only.
	ErrRouting = errors.New("routing failed")

	// ErrRetrieval indicates the question embedding or a vector query failed.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrSynthesis indicates answer generation failed.
	ErrSynthesis = errors.New("synthesis failed")
)

// Error kinds recorded on failed answer records.
const (
	KindIngestion = "IngestionError"
	KindRouting   = "RoutingError"
	KindRetrieval = "RetrievalError"
	KindSynthesis = "SynthesisError"
)

// ErrorKind maps a pipeline error to its kind.
// Returns an empty string for errors outside the pipeline taxonomy.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIngestion):
		return KindIngestion
	case errors.Is(err, ErrRouting):
		return KindRouting
	case errors.Is(err, ErrRetrieval):
		return KindRetrieval
	case errors.Is(err, ErrSynthesis):
		return KindSynthesis
	default:
		return ""
	}
}
