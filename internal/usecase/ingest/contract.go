package ingest

import (
	"context"

	domchunk "github.com/meridianwatch/geodex/internal/domain/chunk"
	"github.com/meridianwatch/geodex/internal/usecase/embedding"
)

// Store defines the storage contract for document chunks.
type Store interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, chunks []domchunk.Chunk, vectors [][]float32) error
	DeleteDocument(ctx context.Context, documentID string) (int, error)
	Count(ctx context.Context) (int, error)
	Drop(ctx context.Context) error
	Name() string
}

// Embedder vectorizes document texts preserving input positions.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, embedding.Usage, error)
}
