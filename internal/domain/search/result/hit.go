package result

import "github.com/meridianwatch/geodex/internal/domain/chunk"

// IndexHit is a raw vector index hit before credibility annotation and
// ranking. Relevance is already normalized to [0,1].
type IndexHit struct {
	ChunkID   string
	Text      string
	Metadata  chunk.Metadata
	Relevance float64
}
