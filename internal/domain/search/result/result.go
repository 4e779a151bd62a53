// Package result defines the ephemeral per-query search hit.
package result

import (
	"github.com/meridianwatch/geodex/internal/domain/chunk"
	"github.com/meridianwatch/geodex/internal/domain/credibility"
)

// SourceType tags the origin of a search hit.
type SourceType string

// Hit origins.
const (
	// VectorStore marks a hit retrieved from the persistent index.
	VectorStore SourceType = "vector_store"
	// WebSearch marks a hit retrieved from the live web search provider.
	WebSearch SourceType = "web_search"
)

// Result is a single ranked search hit. Constructed fresh per search call,
// never persisted.
type Result struct {
	content     string
	metadata    chunk.Metadata
	credibility credibility.Score
	relevance   float64
	sourceType  SourceType
}

// New creates a search result.
func New(
	content string, meta chunk.Metadata, cred credibility.Score,
	relevance float64, origin SourceType,
) Result {
	return Result{
		content:     content,
		metadata:    meta,
		credibility: cred,
		relevance:   relevance,
		sourceType:  origin,
	}
}

// Content returns the hit text.
func (r *Result) Content() string { return r.content }

// Metadata returns the hit metadata.
func (r *Result) Metadata() chunk.Metadata { return r.metadata }

// Credibility returns the credibility assessment of the hit's source.
func (r *Result) Credibility() credibility.Score { return r.credibility }

// Relevance returns the relevance score in [0,1].
func (r *Result) Relevance() float64 { return r.relevance }

// SourceType returns the hit origin.
func (r *Result) SourceType() SourceType { return r.sourceType }

// FingerprintLength is the content prefix length used for deduplication.
const FingerprintLength = 200

// Fingerprint returns the dedup key: the first FingerprintLength characters of
// the content.
func (r *Result) Fingerprint() string {
	if len(r.content) <= FingerprintLength {
		return r.content
	}
	return r.content[:FingerprintLength]
}
