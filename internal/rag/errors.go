package rag

import "errors"

// Error kinds surfaced by the pipeline. Callers match with errors.Is to
// distinguish upstream outages from per-request faults; none of these are
// retried inside the pipeline.
var (
	// ErrDimensionMismatch means the query vector's dimension disagrees with
	// the index it is being searched against.
	ErrDimensionMismatch = errors.New("query vector dimension mismatch")

	// ErrIndexUnavailable means a vector index could not be read.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrEmbeddingUnavailable means the embedding endpoint failed or timed out.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable means the chat endpoint failed or timed out.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)
