// Package search orchestrates hybrid retrieval: vector index hits and live
// web fragments merged through a single threshold, sort, dedup, truncate
// pipeline.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meridianwatch/geodex/internal/domain"
	"github.com/meridianwatch/geodex/internal/domain/chunk"
	"github.com/meridianwatch/geodex/internal/domain/search/filter"
	"github.com/meridianwatch/geodex/internal/domain/search/result"
	"github.com/meridianwatch/geodex/internal/domain/search/strategy"
	"github.com/meridianwatch/geodex/internal/metrics"
)

// Defaults applied to zero-valued request parameters.
const (
	DefaultNResults        = 5
	DefaultMinRelevance    = 0.3
	DefaultWebResultsRatio = 0.3
)

// Synthetic relevance for web fragments: rank-decayed from the base, never
// below the floor, so fresh web evidence competes with index hits without
// dominating them.
const (
	webBaseRelevance = 0.6
	webRelevanceStep = 0.05
	webMinRelevance  = 0.3
)

// Params tunes a single search call. Zero values fall back to the service
// defaults.
type Params struct {
	NResults        int
	Region          string
	Country         string
	Source          string
	Strategy        strategy.Strategy
	MinRelevance    float64
	WebResultsRatio float64
}

// Defaults are the service-level fallbacks for zero-valued request
// parameters. Zero fields keep the package constants.
type Defaults struct {
	NResults        int
	Strategy        strategy.Strategy
	MinRelevance    float64
	WebResultsRatio float64
}

// Service runs hybrid searches. Source failures degrade to zero hits from
// that source; the call itself fails only on an unusable request or an
// embedding failure under an index-touching strategy.
type Service struct {
	index    Index
	web      domain.WebSearcher
	embedder Embedder
	cred     Evaluator
	logger   *zap.Logger
	defaults Defaults
}

// New creates the search orchestrator. web may be nil when no provider is
// configured; web-consulting strategies then degrade to index-only behavior.
func New(index Index, web domain.WebSearcher, embedder Embedder, cred Evaluator, logger *zap.Logger) *Service {
	return &Service{
		index:    index,
		web:      web,
		embedder: embedder,
		cred:     cred,
		logger:   logger,
		defaults: Defaults{
			NResults:        DefaultNResults,
			Strategy:        strategy.Hybrid,
			MinRelevance:    DefaultMinRelevance,
			WebResultsRatio: DefaultWebResultsRatio,
		},
	}
}

// WithDefaults overrides the service-level parameter fallbacks.
func (s *Service) WithDefaults(d Defaults) *Service {
	if d.NResults > 0 {
		s.defaults.NResults = d.NResults
	}
	if d.Strategy != "" {
		s.defaults.Strategy = d.Strategy
	}
	if d.MinRelevance > 0 {
		s.defaults.MinRelevance = d.MinRelevance
	}
	if d.WebResultsRatio > 0 && d.WebResultsRatio <= 1 {
		s.defaults.WebResultsRatio = d.WebResultsRatio
	}
	return s
}

// Search runs a query with the given strategy and returns ranked, deduplicated
// results. Results are sorted by relevance descending; ties keep source order
// (index hits before web hits for the hybrid strategy).
func (s *Service) Search(ctx context.Context, query string, p Params) ([]result.Result, error) {
	start := time.Now()
	p = s.withDefaults(p)

	if strings.TrimSpace(query) == "" {
		metrics.SearchRequestsTotal.WithLabelValues(string(p.Strategy), "invalid").Inc()
		return nil, fmt.Errorf("query is empty: %w", domain.ErrInvalidQuery)
	}
	if !p.Strategy.IsValid() {
		metrics.SearchRequestsTotal.WithLabelValues(string(p.Strategy), "invalid").Inc()
		return nil, fmt.Errorf("%q: %w", p.Strategy, domain.ErrInvalidStrategy)
	}

	var hits []result.Result
	var err error
	switch p.Strategy {
	case strategy.VectorOnly:
		hits, err = s.vectorBranch(ctx, query, p, p.NResults)
	case strategy.WebOnly:
		hits = s.webBranch(ctx, query, p.NResults)
	case strategy.Hybrid:
		hits, err = s.searchHybrid(ctx, query, p)
	case strategy.Fallback:
		hits, err = s.searchFallback(ctx, query, p)
	}
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(p.Strategy), "error").Inc()
		return nil, err
	}

	out := rank(hits, p.MinRelevance, p.NResults)

	metrics.SearchRequestsTotal.WithLabelValues(string(p.Strategy), "ok").Inc()
	metrics.SearchDuration.WithLabelValues(string(p.Strategy)).Observe(time.Since(start).Seconds())

	s.logger.Debug("Search completed",
		zap.String("strategy", string(p.Strategy)),
		zap.Int("raw_hits", len(hits)),
		zap.Int("results", len(out)),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}

// SearchByRegion is a vector-only Search scoped to a region. The scoped
// wrappers never consult web search: live fragments carry no region or
// country metadata to scope by.
func (s *Service) SearchByRegion(ctx context.Context, query, region string, n int) ([]result.Result, error) {
	return s.Search(ctx, query, Params{NResults: n, Region: region, Strategy: strategy.VectorOnly})
}

// SearchByCountry is a vector-only Search scoped to a country.
func (s *Service) SearchByCountry(ctx context.Context, query, country string, n int) ([]result.Result, error) {
	return s.Search(ctx, query, Params{NResults: n, Country: country, Strategy: strategy.VectorOnly})
}

// SearchBySource is a vector-only Search scoped to a source.
func (s *Service) SearchBySource(ctx context.Context, query, source string, n int) ([]result.Result, error) {
	return s.Search(ctx, query, Params{NResults: n, Source: source, Strategy: strategy.VectorOnly})
}

// searchHybrid consults both sources concurrently. The index is asked for the
// full result count; web search for a ratio-derived share, at least one. An
// embedding failure from the vector branch fails the whole call.
func (s *Service) searchHybrid(ctx context.Context, query string, p Params) ([]result.Result, error) {
	webCount := int(float64(p.NResults) * p.WebResultsRatio)
	if webCount < 1 {
		webCount = 1
	}

	var vecHits, webHits []result.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vecHits, err = s.vectorBranch(gctx, query, p, p.NResults)
		return err
	})
	g.Go(func() error {
		webHits = s.webBranch(gctx, query, webCount)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(vecHits, webHits...), nil
}

// searchFallback consults the index first and tops up from web search only
// when the index comes up short.
func (s *Service) searchFallback(ctx context.Context, query string, p Params) ([]result.Result, error) {
	vecHits, err := s.vectorBranch(ctx, query, p, p.NResults)
	if err != nil {
		return nil, err
	}
	if len(vecHits) >= p.NResults {
		return vecHits, nil
	}
	webHits := s.webBranch(ctx, query, p.NResults-len(vecHits))
	return append(vecHits, webHits...), nil
}

// vectorBranch embeds the query and runs filtered KNN. An embedding failure
// is fatal for every strategy that reaches here: without a query vector the
// index cannot answer at all. Index failures degrade to zero hits, since the
// other source may still serve the request.
func (s *Service) vectorBranch(ctx context.Context, query string, p Params, n int) ([]result.Result, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		metrics.SearchSourceErrorsTotal.WithLabelValues("vector_store").Inc()
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	if len(vector) == 0 {
		return nil, nil
	}

	criteria := filter.Criteria{Region: p.Region, Country: p.Country, Source: p.Source}
	hits, err := s.index.Query(ctx, vector, n, criteria)
	if err != nil {
		s.degrade("vector_store", "query index", err)
		return nil, nil
	}
	metrics.SearchHitsTotal.WithLabelValues("vector_store").Add(float64(len(hits)))

	out := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		cred := s.cred.Evaluate(h.Metadata.Source, h.Metadata.URL, h.Text)
		out = append(out, result.New(h.Text, h.Metadata, cred, h.Relevance, result.VectorStore))
	}
	return out, nil
}

// webBranch fetches live fragments and assigns synthetic rank-based relevance.
// The provider already degrades to an empty list on failure.
func (s *Service) webBranch(ctx context.Context, query string, n int) []result.Result {
	if s.web == nil || n <= 0 {
		return nil
	}

	fragments := s.web.Fetch(ctx, query, n)
	metrics.SearchHitsTotal.WithLabelValues("web_search").Add(float64(len(fragments)))

	out := make([]result.Result, 0, len(fragments))
	for i, frag := range fragments {
		relevance := webBaseRelevance - webRelevanceStep*float64(i)
		if relevance < webMinRelevance {
			relevance = webMinRelevance
		}

		meta := chunk.Metadata{
			Source: string(result.WebSearch),
			URL:    frag.URL,
			Title:  frag.Title,
			Date:   frag.Date,
		}
		cred := s.cred.Evaluate(string(result.WebSearch), frag.URL, frag.Content)
		out = append(out, result.New(frag.Content, meta, cred, relevance, result.WebSearch))
	}
	return out
}

func (s *Service) degrade(source, op string, err error) {
	metrics.SearchSourceErrorsTotal.WithLabelValues(source).Inc()
	s.logger.Warn("Search source degraded to zero hits",
		zap.String("source", source),
		zap.String("op", op),
		zap.Error(err),
	)
}

func (s *Service) withDefaults(p Params) Params {
	if p.NResults <= 0 {
		p.NResults = s.defaults.NResults
	}
	if p.Strategy == "" {
		p.Strategy = s.defaults.Strategy
	}
	if p.MinRelevance <= 0 {
		p.MinRelevance = s.defaults.MinRelevance
	}
	if p.WebResultsRatio <= 0 || p.WebResultsRatio > 1 {
		p.WebResultsRatio = s.defaults.WebResultsRatio
	}
	return p
}
