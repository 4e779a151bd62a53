package embedding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/meridianwatch/geodex/internal/domain"
)

// DefaultBatchSize caps the number of texts per provider call.
const DefaultBatchSize = 100

// embedder is the consumer interface of the decorated provider chain.
type embedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

// Usage aggregates token consumption across provider calls.
type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Service turns free text into vectors for indexing and querying. Blank input
// produces an empty vector without touching the provider, so callers never
// need to pre-validate text.
type Service struct {
	embedder  embedder
	batchSize int
	logger    *zap.Logger
}

// NewService creates an embedding service over the decorated provider.
func NewService(e embedder, batchSize int, logger *zap.Logger) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{embedder: e, batchSize: batchSize, logger: logger}
}

// EmbedQuery vectorizes a single query text.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return []float32{}, nil
	}

	result, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return result.Embedding, nil
}

// EmbedDocuments vectorizes texts preserving input positions: the i-th vector
// always belongs to the i-th text, with empty vectors standing in for blank
// texts. Non-blank texts go to the provider in sub-batches.
func (s *Service) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, Usage, error) {
	vectors := make([][]float32, len(texts))
	idx := make([]int, 0, len(texts))
	pending := make([]string, 0, len(texts))

	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			vectors[i] = []float32{}
			continue
		}
		idx = append(idx, i)
		pending = append(pending, text)
	}

	var usage Usage
	for start := 0; start < len(pending); start += s.batchSize {
		end := min(start+s.batchSize, len(pending))

		result, err := s.embedder.BatchEmbed(ctx, pending[start:end])
		if err != nil {
			return nil, Usage{}, fmt.Errorf("embed documents batch %d..%d: %w", start, end, err)
		}
		if len(result.Embeddings) != end-start {
			return nil, Usage{}, fmt.Errorf(
				"batch %d..%d returned %d embeddings: %w",
				start, end, len(result.Embeddings), domain.ErrEmbeddingProvider)
		}

		for j, vec := range result.Embeddings {
			vectors[idx[start+j]] = vec
		}
		usage.PromptTokens += result.PromptTokens
		usage.TotalTokens += result.TotalTokens
	}

	if len(pending) > 0 {
		s.logger.Debug("Embedded documents",
			zap.Int("texts", len(texts)),
			zap.Int("embedded", len(pending)),
			zap.Int("total_tokens", usage.TotalTokens),
		)
	}

	return vectors, usage, nil
}
