package ingest

import (
	"context"

	domchunk "github.com/meridianwatch/geodex/internal/domain/chunk"
	"github.com/meridianwatch/geodex/internal/usecase/embedding"
)

// --- Mocks ---

type mockStore struct {
	upserted    []domchunk.Chunk
	vectors     [][]float32
	upsertErr   error
	deleted     []string
	deleteCount int
	deleteErr   error
	count       int
	countErr    error
	dropCalls   int
	dropErr     error
	ensureCalls int
}

func (m *mockStore) EnsureIndex(_ context.Context) error {
	m.ensureCalls++
	return nil
}

func (m *mockStore) Drop(_ context.Context) error {
	m.dropCalls++
	return m.dropErr
}

func (m *mockStore) Upsert(_ context.Context, chunks []domchunk.Chunk, vectors [][]float32) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, chunks...)
	m.vectors = append(m.vectors, vectors...)
	return nil
}

func (m *mockStore) DeleteDocument(_ context.Context, documentID string) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deleted = append(m.deleted, documentID)
	return m.deleteCount, nil
}

func (m *mockStore) Count(_ context.Context) (int, error) {
	return m.count, m.countErr
}

func (m *mockStore) Name() string { return "test_collection" }

type mockEmbedder struct {
	calls  int
	texts  [][]string
	err    error
	tokens int
}

func (m *mockEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, embedding.Usage, error) {
	m.calls++
	m.texts = append(m.texts, texts)
	if m.err != nil {
		return nil, embedding.Usage{}, m.err
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{float32(i), 1}
	}
	return vectors, embedding.Usage{TotalTokens: m.tokens}, nil
}
