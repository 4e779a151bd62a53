// Package chunk holds the persisted document chunk aggregate and its
// deterministic identity scheme.
package chunk

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/meridianwatch/geodex/internal/domain"
)

// MinTextLength is the default minimum chunk text length. Shorter chunks are
// dropped during ingestion, never stored.
const MinTextLength = 100

// DocumentIDLength is the hex length of a derived document ID.
const DocumentIDLength = 12

// Chunk is an immutable slice of a source document with its metadata.
type Chunk struct {
	chunkID    string
	documentID string
	text       string
	metadata   Metadata
}

// New validates and creates a Chunk. The chunk ID is derived from the document
// ID and chunk index, so the same (document, index) pair always maps to the
// same stored entry and upserts replace in place.
func New(documentID string, index int, text string, meta Metadata) (Chunk, error) {
	if documentID == "" {
		return Chunk{}, fmt.Errorf("document ID is required")
	}
	if index < 0 {
		return Chunk{}, fmt.Errorf("chunk index must be non-negative, got %d", index)
	}
	if len(text) < MinTextLength {
		return Chunk{}, fmt.Errorf("%w: %d chars (min %d)", domain.ErrChunkTooShort, len(text), MinTextLength)
	}

	meta.ChunkIndex = index

	return Chunk{
		chunkID:    ChunkID(documentID, index),
		documentID: documentID,
		text:       text,
		metadata:   meta,
	}, nil
}

// Reconstruct creates a Chunk without validation (storage hydration).
func Reconstruct(chunkID, documentID, text string, meta Metadata) Chunk {
	return Chunk{chunkID: chunkID, documentID: documentID, text: text, metadata: meta}
}

// ID returns the chunk identifier.
func (c *Chunk) ID() string { return c.chunkID }

// DocumentID returns the parent document identifier.
func (c *Chunk) DocumentID() string { return c.documentID }

// Text returns the chunk content.
func (c *Chunk) Text() string { return c.text }

// Metadata returns the chunk metadata.
func (c *Chunk) Metadata() Metadata { return c.metadata }

// DocumentID derives a stable document identifier from the full source text.
func DocumentID(content string) string {
	h := sha1.Sum([]byte(content))
	return hex.EncodeToString(h[:])[:DocumentIDLength]
}

// ChunkID derives a stable chunk identifier from the document ID and index.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s-chunk-%04d", documentID, index)
}
