package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/meridianwatch/geodex/internal/domain"
	domchunk "github.com/meridianwatch/geodex/internal/domain/chunk"
	"github.com/meridianwatch/geodex/internal/usecase/embedding"
)

// Result reports what a single document ingestion produced.
type Result struct {
	DocumentID string          `json:"document_id"`
	Chunks     int             `json:"chunks"`
	Skipped    int             `json:"skipped_chunks"`
	Usage      embedding.Usage `json:"usage"`
}

// Stats describes the state of the chunk collection.
type Stats struct {
	Collection string `json:"collection"`
	Chunks     int    `json:"chunks"`
}

// Service splits, embeds and stores documents. Re-adding the same content is
// idempotent: document and chunk IDs derive from the content, so the second
// ingestion overwrites the first.
type Service struct {
	store    Store
	embedder Embedder
	splitter *Splitter
	logger   *zap.Logger
}

// New creates an ingestion service.
func New(store Store, embedder Embedder, splitter *Splitter, logger *zap.Logger) *Service {
	if splitter == nil {
		splitter = NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &Service{store: store, embedder: embedder, splitter: splitter, logger: logger}
}

// AddDocument ingests one document: split into chunks, drop fragments shorter
// than the minimum, embed the rest and store them. Returns the derived
// document ID and chunk counts.
func (s *Service) AddDocument(ctx context.Context, content string, meta domchunk.Metadata) (Result, error) {
	if strings.TrimSpace(content) == "" {
		return Result{}, fmt.Errorf("document content is empty: %w", domain.ErrInvalidQuery)
	}

	docID := domchunk.DocumentID(content)
	pieces := s.splitter.Split(content)

	texts := make([]string, 0, len(pieces))
	skipped := 0
	for _, piece := range pieces {
		if len(piece) < domchunk.MinTextLength {
			skipped++
			continue
		}
		texts = append(texts, piece)
	}
	if len(texts) == 0 {
		return Result{}, fmt.Errorf(
			"document %s: no chunk reached %d chars: %w",
			docID, domchunk.MinTextLength, domain.ErrChunkTooShort)
	}

	meta.ParseDate()
	meta.TotalChunks = len(texts)

	chunks := make([]domchunk.Chunk, 0, len(texts))
	for i, text := range texts {
		c, err := domchunk.New(docID, i, text, meta)
		if err != nil {
			return Result{}, fmt.Errorf("build chunk %d of %s: %w", i, docID, err)
		}
		chunks = append(chunks, c)
	}

	vectors, usage, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return Result{}, fmt.Errorf("embed document %s: %w", docID, err)
	}

	if err := s.store.Upsert(ctx, chunks, vectors); err != nil {
		return Result{}, fmt.Errorf("store document %s: %w", docID, err)
	}

	s.logger.Info("Document ingested",
		zap.String("document_id", docID),
		zap.String("source", meta.Source),
		zap.Int("chunks", len(chunks)),
		zap.Int("skipped", skipped),
		zap.Int("total_tokens", usage.TotalTokens),
	)

	return Result{DocumentID: docID, Chunks: len(chunks), Skipped: skipped, Usage: usage}, nil
}

// DeleteDocument removes every chunk of a document. Returns the number of
// removed chunks; zero with no error when the document is unknown.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	n, err := s.store.DeleteDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("delete document %s: %w", documentID, err)
	}

	s.logger.Info("Document deleted",
		zap.String("document_id", documentID),
		zap.Int("chunks", n),
	)
	return n, nil
}

// Reset drops the collection index and recreates it empty. Intended for
// maintenance and test environments, not routine operation.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Drop(ctx); err != nil {
		return fmt.Errorf("drop collection %s: %w", s.store.Name(), err)
	}
	if err := s.store.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("recreate collection %s: %w", s.store.Name(), err)
	}

	s.logger.Warn("Collection reset", zap.String("collection", s.store.Name()))
	return nil
}

// Stats reports the collection name and chunk count.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count chunks: %w", err)
	}
	return Stats{Collection: s.store.Name(), Chunks: n}, nil
}
