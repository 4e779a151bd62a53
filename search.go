package geodex

import (
	"context"
	"fmt"

	"github.com/meridianwatch/geodex/internal/domain/search/result"
	"github.com/meridianwatch/geodex/internal/domain/search/strategy"
	searchuc "github.com/meridianwatch/geodex/internal/usecase/search"
)

// Strategy selects which retrieval sources a search consults.
type Strategy string

// Search strategies.
const (
	// StrategyVectorOnly queries the persistent index only.
	StrategyVectorOnly Strategy = Strategy(strategy.VectorOnly)
	// StrategyWebOnly queries the live web search provider only.
	StrategyWebOnly Strategy = Strategy(strategy.WebOnly)
	// StrategyHybrid queries both sources and merges the results.
	StrategyHybrid Strategy = Strategy(strategy.Hybrid)
	// StrategyFallback queries the index first and tops up from web search
	// when the index comes up short.
	StrategyFallback Strategy = Strategy(strategy.Fallback)
)

// SearchOptions configures a search call. Zero values use client defaults.
type SearchOptions struct {
	NResults        int
	Region          string
	Country         string
	Source          string
	Strategy        Strategy
	MinRelevance    float64
	WebResultsRatio float64
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	Content     string           `json:"content"`
	Source      string           `json:"source"`
	URL         string           `json:"url,omitempty"`
	Title       string           `json:"title,omitempty"`
	Region      string           `json:"region,omitempty"`
	Country     string           `json:"country,omitempty"`
	Date        string           `json:"date,omitempty"`
	Relevance   float64          `json:"relevance"`
	SourceType  string           `json:"source_type"`
	Credibility CredibilityScore `json:"credibility"`
}

// CredibilityScore is the source credibility assessment of a hit.
type CredibilityScore struct {
	Score     float64  `json:"score"`
	Level     string   `json:"level"`
	Reasoning string   `json:"reasoning"`
	Verified  bool     `json:"verified"`
	Flags     []string `json:"flags,omitempty"`
}

// Search runs a hybrid search and returns ranked, deduplicated results.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) ([]SearchResult, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	p := searchuc.Params{
		NResults:        opts.NResults,
		Region:          opts.Region,
		Country:         opts.Country,
		Source:          opts.Source,
		Strategy:        strategy.Strategy(opts.Strategy),
		MinRelevance:    opts.MinRelevance,
		WebResultsRatio: opts.WebResultsRatio,
	}
	if p.NResults <= 0 {
		p.NResults = c.searchDefaults.nResults
	}
	if p.MinRelevance <= 0 {
		p.MinRelevance = c.searchDefaults.minRelevance
	}
	if p.WebResultsRatio <= 0 {
		p.WebResultsRatio = c.searchDefaults.webResultsRatio
	}

	results, err := c.searchSvc.Search(ctx, query, p)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromResults(results), nil
}

// SearchByRegion scopes the search to a region. The scoped variants query
// the index only; web results carry no metadata to scope by.
func (c *Client) SearchByRegion(ctx context.Context, query, region string, n int) ([]SearchResult, error) {
	return c.Search(ctx, query, &SearchOptions{Region: region, NResults: n, Strategy: StrategyVectorOnly})
}

// SearchByCountry scopes the search to a country, querying the index only.
func (c *Client) SearchByCountry(ctx context.Context, query, country string, n int) ([]SearchResult, error) {
	return c.Search(ctx, query, &SearchOptions{Country: country, NResults: n, Strategy: StrategyVectorOnly})
}

// SearchBySource scopes the search to a source, querying the index only.
func (c *Client) SearchBySource(ctx context.Context, query, source string, n int) ([]SearchResult, error) {
	return c.Search(ctx, query, &SearchOptions{Source: source, NResults: n, Strategy: StrategyVectorOnly})
}

// SearchURLs returns the source URLs the web provider reports for a query,
// deduplicated in first-seen order. Returns nil when no web provider is
// configured or the provider call fails.
func (c *Client) SearchURLs(ctx context.Context, query string) []string {
	if c.web == nil {
		return nil
	}
	return c.web.SearchURLs(ctx, query)
}

func fromResults(results []result.Result) []SearchResult {
	out := make([]SearchResult, len(results))
	for i := range results {
		r := &results[i]
		meta := r.Metadata()
		cred := r.Credibility()
		out[i] = SearchResult{
			Content:    r.Content(),
			Source:     meta.Source,
			URL:        meta.URL,
			Title:      meta.Title,
			Region:     meta.Region,
			Country:    meta.Country,
			Date:       meta.Date,
			Relevance:  r.Relevance(),
			SourceType: string(r.SourceType()),
			Credibility: CredibilityScore{
				Score:     cred.Score,
				Level:     string(cred.Level),
				Reasoning: cred.Reasoning,
				Verified:  cred.Verified,
				Flags:     cred.Flags,
			},
		}
	}
	return out
}
