package search

import (
	"context"

	"github.com/meridianwatch/geodex/internal/domain/credibility"
	"github.com/meridianwatch/geodex/internal/domain/search/filter"
	"github.com/meridianwatch/geodex/internal/domain/search/result"
)

// Index is the vector store contract: filtered KNN over stored chunks.
type Index interface {
	Query(ctx context.Context, vector []float32, n int, criteria filter.Criteria) ([]result.IndexHit, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Evaluator scores source credibility. Pure and deterministic.
type Evaluator interface {
	Evaluate(source, rawURL, content string) credibility.Score
}
