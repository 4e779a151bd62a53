package domain

import "errors"

var (
	// ErrChunkTooShort signals chunk text below the configured minimum length.
	ErrChunkTooShort = errors.New("chunk text too short")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidQuery signals a malformed search request (caller bug, fail fast).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidStrategy signals an unknown search strategy.
	ErrInvalidStrategy = errors.New("invalid search strategy")

	// ErrEmbeddingProvider signals an embedding provider failure after retries
	// are exhausted. A broken embedder makes vector search meaningless, so this
	// propagates to the caller as a hard failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
)
