package search

import (
	"context"
	"strings"

	"github.com/meridianwatch/geodex/internal/domain"
	"github.com/meridianwatch/geodex/internal/domain/chunk"
	"github.com/meridianwatch/geodex/internal/domain/credibility"
	"github.com/meridianwatch/geodex/internal/domain/search/filter"
	"github.com/meridianwatch/geodex/internal/domain/search/result"
)

// --- Mocks ---

type mockIndex struct {
	calls    int
	lastN    int
	criteria filter.Criteria
	hits     []result.IndexHit
	err      error
}

func (m *mockIndex) Query(_ context.Context, _ []float32, n int, c filter.Criteria) ([]result.IndexHit, error) {
	m.calls++
	m.lastN = n
	m.criteria = c
	if m.err != nil {
		return nil, m.err
	}
	if len(m.hits) > n {
		return m.hits[:n], nil
	}
	return m.hits, nil
}

type mockWeb struct {
	calls     int
	lastLimit int
	fragments []domain.Fragment
}

func (m *mockWeb) Fetch(_ context.Context, _ string, limit int) []domain.Fragment {
	m.calls++
	m.lastLimit = limit
	if len(m.fragments) > limit {
		return m.fragments[:limit]
	}
	return m.fragments
}

type mockEmbedder struct {
	calls int
	err   error
}

func (m *mockEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// --- Fixtures ---

func indexHit(text string, relevance float64) result.IndexHit {
	return result.IndexHit{
		Text:      text,
		Metadata:  chunk.Metadata{Source: "archive", Region: "eastern_europe"},
		Relevance: relevance,
	}
}

func webFragment(content string) domain.Fragment {
	return domain.Fragment{Content: content, URL: "https://example.com/" + strings.ToLower(content[:3])}
}

func newTestEvaluator() *credibility.Evaluator {
	return credibility.NewEvaluator(credibility.DefaultTrustedDomains, credibility.DefaultSuspiciousDomains)
}
