package geodex

import (
	"context"
	"fmt"

	"github.com/meridianwatch/geodex/internal/domain/chunk"
)

// DocumentMetadata describes a source document at ingestion time. Date should
// be an ISO 8601 date; when present, year and month become filterable fields.
type DocumentMetadata struct {
	Source       string
	URL          string
	Region       string
	Country      string
	Date         string
	Title        string
	DocumentType string
}

// AddResult reports what a document ingestion produced.
type AddResult struct {
	DocumentID    string `json:"document_id"`
	Chunks        int    `json:"chunks"`
	SkippedChunks int    `json:"skipped_chunks"`
	TotalTokens   int    `json:"total_tokens"`
}

// Stats describes the collection and embedding cache state.
type Stats struct {
	Collection  string `json:"collection"`
	Chunks      int    `json:"chunks"`
	CacheSize   int    `json:"cache_size"`
	CacheHits   int64  `json:"cache_hits"`
	CacheMisses int64  `json:"cache_misses"`
}

// AddDocument splits, embeds and indexes a document. The returned document ID
// is derived from the content, so re-adding the same text overwrites the
// previous chunks instead of duplicating them.
func (c *Client) AddDocument(ctx context.Context, content string, meta DocumentMetadata) (AddResult, error) {
	r, err := c.ingestSvc.AddDocument(ctx, content, chunk.Metadata{
		Source:       meta.Source,
		URL:          meta.URL,
		Region:       meta.Region,
		Country:      meta.Country,
		Date:         meta.Date,
		Title:        meta.Title,
		DocumentType: meta.DocumentType,
	})
	if err != nil {
		return AddResult{}, fmt.Errorf("add document: %w", err)
	}
	return AddResult{
		DocumentID:    r.DocumentID,
		Chunks:        r.Chunks,
		SkippedChunks: r.Skipped,
		TotalTokens:   r.Usage.TotalTokens,
	}, nil
}

// DeleteDocument removes every chunk of a document. Returns the number of
// removed chunks; zero when the document is unknown.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	n, err := c.ingestSvc.DeleteDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("delete document: %w", err)
	}
	return n, nil
}

// Reset drops and recreates the collection, removing every stored chunk, and
// clears the embedding cache. Irreversible.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.ingestSvc.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	c.cache.Clear()
	return nil
}

// Stats reports collection size and embedding cache effectiveness.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	s, err := c.ingestSvc.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	cs := c.cache.Stats()
	return Stats{
		Collection:  s.Collection,
		Chunks:      s.Chunks,
		CacheSize:   cs.Size,
		CacheHits:   cs.Hits,
		CacheMisses: cs.Misses,
	}, nil
}
