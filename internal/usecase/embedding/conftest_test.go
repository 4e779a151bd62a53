package embedding

import (
	"context"
	"fmt"

	"github.com/meridianwatch/geodex/internal/domain"
)

// mockProvider counts calls and returns deterministic vectors derived from the
// text length.
type mockProvider struct {
	embedCalls int
	batchCalls int
	batchSizes []int
	embedErr   error
	batchErr   error
}

func (m *mockProvider) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return domain.EmbeddingResult{}, m.embedErr
	}
	return domain.EmbeddingResult{
		Embedding:   vectorFor(text),
		TotalTokens: len(text),
	}, nil
}

func (m *mockProvider) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}

	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, text := range texts {
		out.Embeddings[i] = vectorFor(text)
		out.TotalTokens += len(text)
	}
	return out, nil
}

func vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

func uniqueTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("document text number %d", i)
	}
	return texts
}
