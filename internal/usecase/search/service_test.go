package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/meridianwatch/geodex/internal/domain"
	"github.com/meridianwatch/geodex/internal/domain/search/result"
	"github.com/meridianwatch/geodex/internal/domain/search/strategy"
)

func longText(label string) string {
	return label + ": " + strings.Repeat("detailed geopolitical analysis ", 8)
}

func newService(index *mockIndex, web *mockWeb, emb *mockEmbedder) *Service {
	var ws domain.WebSearcher
	if web != nil {
		ws = web
	}
	return New(index, ws, emb, newTestEvaluator(), zap.NewNop())
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newService(&mockIndex{}, &mockWeb{}, &mockEmbedder{})

	_, err := svc.Search(context.Background(), "   ", Params{})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestSearch_InvalidStrategy(t *testing.T) {
	svc := newService(&mockIndex{}, &mockWeb{}, &mockEmbedder{})

	_, err := svc.Search(context.Background(), "baltic security", Params{Strategy: "keyword"})
	if !errors.Is(err, domain.ErrInvalidStrategy) {
		t.Errorf("expected ErrInvalidStrategy, got %v", err)
	}
}

func TestSearch_VectorOnlyNeverCallsWeb(t *testing.T) {
	index := &mockIndex{hits: []result.IndexHit{
		indexHit(longText("a"), 0.9),
		indexHit(longText("b"), 0.8),
	}}
	web := &mockWeb{fragments: []domain.Fragment{webFragment(longText("web"))}}
	svc := newService(index, web, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "baltic security", Params{Strategy: strategy.VectorOnly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if web.calls != 0 {
		t.Error("vector_only must not consult web search")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.SourceType() != result.VectorStore {
			t.Errorf("expected vector_store source, got %q", r.SourceType())
		}
	}
}

func TestSearch_WebOnlyNeverCallsIndex(t *testing.T) {
	index := &mockIndex{hits: []result.IndexHit{indexHit(longText("a"), 0.9)}}
	web := &mockWeb{fragments: []domain.Fragment{
		webFragment(longText("web1")),
		webFragment(longText("web2")),
	}}
	emb := &mockEmbedder{}
	svc := newService(index, web, emb)

	results, err := svc.Search(context.Background(), "baltic security", Params{Strategy: strategy.WebOnly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if index.calls != 0 {
		t.Error("web_only must not consult the index")
	}
	if emb.calls != 0 {
		t.Error("web_only must not embed the query")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.SourceType() != result.WebSearch {
			t.Errorf("expected web_search source, got %q", r.SourceType())
		}
	}
}

func TestSearch_WebRelevanceDecays(t *testing.T) {
	fragments := make([]domain.Fragment, 10)
	for i := range fragments {
		fragments[i] = webFragment(longText(strings.Repeat("w", i+3)))
	}
	web := &mockWeb{fragments: fragments}
	svc := newService(&mockIndex{}, web, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "query", Params{
		Strategy: strategy.WebOnly,
		NResults: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}

	// 0.6, 0.55, 0.5, ... floored at 0.3.
	if results[0].Relevance() != 0.6 {
		t.Errorf("rank 0: expected 0.6, got %v", results[0].Relevance())
	}
	last := results[len(results)-1].Relevance()
	if last != 0.3 {
		t.Errorf("deep ranks must floor at 0.3, got %v", last)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Relevance() > results[i-1].Relevance() {
			t.Errorf("relevance must not increase with rank: %v then %v",
				results[i-1].Relevance(), results[i].Relevance())
		}
	}
}

func TestSearch_HybridMergesBothSources(t *testing.T) {
	index := &mockIndex{hits: []result.IndexHit{
		indexHit(longText("a"), 0.9),
		indexHit(longText("b"), 0.7),
	}}
	web := &mockWeb{fragments: []domain.Fragment{webFragment(longText("web"))}}
	svc := newService(index, web, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "baltic security", Params{
		Strategy: strategy.Hybrid,
		NResults: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if index.lastN != 10 {
		t.Errorf("index must be asked for the full count, got %d", index.lastN)
	}
	// 10 * 0.3 ratio = 3 web results.
	if web.lastLimit != 3 {
		t.Errorf("web must be asked for the ratio share, got %d", web.lastLimit)
	}

	var sources []result.SourceType
	for _, r := range results {
		sources = append(sources, r.SourceType())
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 merged results, got %d (%v)", len(results), sources)
	}
	// 0.9 vector, 0.7 vector, 0.6 web.
	wantRel := []float64{0.9, 0.7, 0.6}
	for i, r := range results {
		if r.Relevance() != wantRel[i] {
			t.Errorf("result %d: expected relevance %v, got %v", i, wantRel[i], r.Relevance())
		}
	}
}

func TestSearch_HybridWebShareAtLeastOne(t *testing.T) {
	web := &mockWeb{fragments: []domain.Fragment{webFragment(longText("web"))}}
	svc := newService(&mockIndex{}, web, &mockEmbedder{})

	_, err := svc.Search(context.Background(), "query", Params{
		Strategy: strategy.Hybrid,
		NResults: 2, // 2 * 0.3 rounds down to 0
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if web.lastLimit != 1 {
		t.Errorf("hybrid must always ask web search for at least one result, got %d", web.lastLimit)
	}
}

func TestSearch_FallbackSkipsWebWhenIndexFull(t *testing.T) {
	hits := make([]result.IndexHit, 5)
	for i := range hits {
		hits[i] = indexHit(longText(strings.Repeat("v", i+3)), 0.9-float64(i)*0.05)
	}
	index := &mockIndex{hits: hits}
	web := &mockWeb{fragments: []domain.Fragment{webFragment(longText("web"))}}
	svc := newService(index, web, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "query", Params{
		Strategy: strategy.Fallback,
		NResults: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if web.calls != 0 {
		t.Error("fallback must not consult web search when the index satisfies the request")
	}
	if len(results) != 5 {
		t.Errorf("expected 5 results, got %d", len(results))
	}
}

func TestSearch_FallbackTopsUpShortfall(t *testing.T) {
	index := &mockIndex{hits: []result.IndexHit{
		indexHit(longText("a"), 0.9),
		indexHit(longText("b"), 0.8),
	}}
	web := &mockWeb{fragments: []domain.Fragment{
		webFragment(longText("web1")),
		webFragment(longText("web2")),
		webFragment(longText("web3")),
	}}
	svc := newService(index, web, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "query", Params{
		Strategy: strategy.Fallback,
		NResults: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if web.calls != 1 || web.lastLimit != 3 {
		t.Errorf("expected one web call for exactly 3 results, got calls=%d limit=%d",
			web.calls, web.lastLimit)
	}
	if len(results) != 5 {
		t.Errorf("expected 5 merged results, got %d", len(results))
	}
}

func TestSearch_IndexErrorDegradesToWeb(t *testing.T) {
	index := &mockIndex{err: errors.New("store down")}
	web := &mockWeb{fragments: []domain.Fragment{webFragment(longText("web"))}}
	svc := newService(index, web, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "query", Params{Strategy: strategy.Hybrid})
	if err != nil {
		t.Fatalf("source failure must not fail the search: %v", err)
	}
	if len(results) != 1 || results[0].SourceType() != result.WebSearch {
		t.Errorf("expected the surviving web hit, got %d results", len(results))
	}
}

func TestSearch_EmbedderErrorFailsVectorOnly(t *testing.T) {
	index := &mockIndex{hits: []result.IndexHit{indexHit(longText("a"), 0.9)}}
	emb := &mockEmbedder{err: errors.New("quota exceeded")}
	svc := newService(index, nil, emb)

	results, err := svc.Search(context.Background(), "query", Params{Strategy: strategy.VectorOnly})
	if err == nil {
		t.Fatal("embedding failure must fail an index-touching search")
	}
	if index.calls != 0 {
		t.Error("index must not be queried without a query vector")
	}
	if results != nil {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearch_EmbedderErrorFailsHybrid(t *testing.T) {
	index := &mockIndex{hits: []result.IndexHit{indexHit(longText("a"), 0.9)}}
	web := &mockWeb{fragments: []domain.Fragment{webFragment(longText("web"))}}
	emb := &mockEmbedder{err: errors.New("quota exceeded")}
	svc := newService(index, web, emb)

	results, err := svc.Search(context.Background(), "query", Params{Strategy: strategy.Hybrid})
	if err == nil {
		t.Fatal("hybrid must not mask an embedding failure with web hits")
	}
	if results != nil {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearch_EmbedderErrorFailsFallback(t *testing.T) {
	emb := &mockEmbedder{err: errors.New("quota exceeded")}
	web := &mockWeb{fragments: []domain.Fragment{webFragment(longText("web"))}}
	svc := newService(&mockIndex{}, web, emb)

	_, err := svc.Search(context.Background(), "query", Params{Strategy: strategy.Fallback})
	if err == nil {
		t.Fatal("fallback must not mask an embedding failure with web hits")
	}
	if web.calls != 0 {
		t.Error("fallback must not top up from web after an embedding failure")
	}
}

func TestSearch_NoWebProviderDegrades(t *testing.T) {
	index := &mockIndex{hits: []result.IndexHit{indexHit(longText("a"), 0.9)}}
	svc := newService(index, nil, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "query", Params{Strategy: strategy.Hybrid})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected index hits only, got %d", len(results))
	}
}

func TestSearch_ThresholdFiltersLowRelevance(t *testing.T) {
	index := &mockIndex{hits: []result.IndexHit{
		indexHit(longText("high"), 0.9),
		indexHit(longText("low"), 0.2),
	}}
	svc := newService(index, nil, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "query", Params{Strategy: strategy.VectorOnly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result above the 0.3 default threshold, got %d", len(results))
	}
	if results[0].Relevance() != 0.9 {
		t.Errorf("wrong survivor: %v", results[0].Relevance())
	}
}

func TestSearch_DedupKeepsMostRelevant(t *testing.T) {
	shared := longText("duplicate")
	index := &mockIndex{hits: []result.IndexHit{
		indexHit(shared, 0.6),
		indexHit(shared, 0.9),
		indexHit(longText("unique"), 0.5),
	}}
	svc := newService(index, nil, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "query", Params{Strategy: strategy.VectorOnly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results after dedup, got %d", len(results))
	}
	if results[0].Relevance() != 0.9 {
		t.Errorf("dedup must keep the most relevant copy, got %v", results[0].Relevance())
	}
}

func TestSearch_TruncatesToNResults(t *testing.T) {
	hits := make([]result.IndexHit, 8)
	for i := range hits {
		hits[i] = indexHit(longText(strings.Repeat("t", i+3)), 0.9-float64(i)*0.01)
	}
	index := &mockIndex{hits: hits}
	svc := newService(index, nil, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "query", Params{
		Strategy: strategy.VectorOnly,
		NResults: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestSearch_SortedByRelevanceDescending(t *testing.T) {
	index := &mockIndex{hits: []result.IndexHit{
		indexHit(longText("mid"), 0.6),
		indexHit(longText("top"), 0.9),
		indexHit(longText("low"), 0.4),
	}}
	svc := newService(index, nil, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "query", Params{Strategy: strategy.VectorOnly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{0.9, 0.6, 0.4}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Relevance() != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], r.Relevance())
		}
	}
}

func TestSearch_FilterCriteriaPassedToIndex(t *testing.T) {
	index := &mockIndex{}
	svc := newService(index, nil, &mockEmbedder{})

	_, err := svc.Search(context.Background(), "query", Params{
		Strategy: strategy.VectorOnly,
		Region:   "eastern_europe",
		Country:  "poland",
		Source:   "osw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.criteria.Region != "eastern_europe" ||
		index.criteria.Country != "poland" ||
		index.criteria.Source != "osw" {
		t.Errorf("criteria not forwarded: %+v", index.criteria)
	}
}

func TestSearch_WebHitsGetCredibility(t *testing.T) {
	web := &mockWeb{fragments: []domain.Fragment{
		{Content: longText("trusted"), URL: "https://www.nato.int/report"},
		{Content: longText("dubious"), URL: "https://sputniknews.com/item"},
	}}
	svc := newService(&mockIndex{}, web, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "query", Params{
		Strategy: strategy.WebOnly,
		NResults: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].Credibility().Score != 0.9 {
		t.Errorf("trusted domain: expected 0.9, got %v", results[0].Credibility().Score)
	}
	if results[1].Credibility().Score != 0.1 {
		t.Errorf("suspicious domain: expected 0.1, got %v", results[1].Credibility().Score)
	}
}

func TestWithDefaults_OverridesZeroParams(t *testing.T) {
	index := &mockIndex{}
	for i := 0; i < 8; i++ {
		index.hits = append(index.hits, indexHit(longText(strings.Repeat("v", i+1)), 0.9))
	}
	svc := newService(index, nil, &mockEmbedder{}).WithDefaults(Defaults{
		NResults: 7,
		Strategy: strategy.VectorOnly,
	})

	results, err := svc.Search(context.Background(), "query", Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 7 {
		t.Errorf("expected 7 results from overridden default, got %d", len(results))
	}
	if index.lastN != 7 {
		t.Errorf("expected index asked for 7, got %d", index.lastN)
	}
}

func TestWithDefaults_ExplicitParamsWin(t *testing.T) {
	index := &mockIndex{hits: []result.IndexHit{indexHit(longText("a"), 0.9)}}
	svc := newService(index, nil, &mockEmbedder{}).WithDefaults(Defaults{
		NResults: 7,
		Strategy: strategy.VectorOnly,
	})

	if _, err := svc.Search(context.Background(), "query", Params{NResults: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.lastN != 2 {
		t.Errorf("expected explicit n=2 to win, got %d", index.lastN)
	}
}

func TestSearchByRegion(t *testing.T) {
	index := &mockIndex{}
	web := &mockWeb{fragments: []domain.Fragment{webFragment(longText("web"))}}
	svc := newService(index, web, &mockEmbedder{})

	if _, err := svc.SearchByRegion(context.Background(), "query", "balkans", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.criteria.Region != "balkans" {
		t.Errorf("region not forwarded: %+v", index.criteria)
	}
	if index.lastN != 3 {
		t.Errorf("expected n=3, got %d", index.lastN)
	}
	if web.calls != 0 {
		t.Errorf("scoped search must stay vector-only, web called %d time(s)", web.calls)
	}
}

func TestSearchByCountry(t *testing.T) {
	index := &mockIndex{}
	web := &mockWeb{fragments: []domain.Fragment{webFragment(longText("web"))}}
	svc := newService(index, web, &mockEmbedder{})

	if _, err := svc.SearchByCountry(context.Background(), "query", "moldova", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.criteria.Country != "moldova" {
		t.Errorf("country not forwarded: %+v", index.criteria)
	}
	if web.calls != 0 {
		t.Errorf("scoped search must stay vector-only, web called %d time(s)", web.calls)
	}
}

func TestSearchBySource(t *testing.T) {
	index := &mockIndex{}
	web := &mockWeb{fragments: []domain.Fragment{webFragment(longText("web"))}}
	svc := newService(index, web, &mockEmbedder{})

	if _, err := svc.SearchBySource(context.Background(), "query", "pism", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.criteria.Source != "pism" {
		t.Errorf("source not forwarded: %+v", index.criteria)
	}
	if web.calls != 0 {
		t.Errorf("scoped search must stay vector-only, web called %d time(s)", web.calls)
	}
}
