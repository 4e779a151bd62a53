// Package websearch wraps a live web search provider that answers a text
// query with one free-text blob of ranked results. The blob is split into
// bounded fragments suitable for the merge pipeline.
//
// Provider failures never propagate: a failed fetch degrades to an empty
// fragment list, which callers treat as "no web evidence".
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/meridianwatch/geodex/internal/domain"
	"github.com/meridianwatch/geodex/internal/metrics"
)

// DefaultFragmentLength is the target fragment size in characters.
const DefaultFragmentLength = 1000

// maxResponseBytes bounds the provider response read.
const maxResponseBytes = 1 << 20 // 1MB

// Config holds web search provider settings.
type Config struct {
	// BaseURL is the provider endpoint; the query is passed as the "q" parameter.
	BaseURL string
	// QueryParam overrides the query parameter name (default "q").
	QueryParam string
	// Timeout bounds a single provider call.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
	// FragmentLength is the target fragment size (default DefaultFragmentLength).
	FragmentLength int
	Logger         *zap.Logger
}

// Client is the web search adapter.
type Client struct {
	baseURL    string
	queryParam string
	fragLen    int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a web search client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	fragLen := cfg.FragmentLength
	if fragLen <= 0 {
		fragLen = DefaultFragmentLength
	}
	queryParam := cfg.QueryParam
	if queryParam == "" {
		queryParam = "q"
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		queryParam: queryParam,
		fragLen:    fragLen,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

// Fetch runs the query and returns up to limit fragments in provider rank
// order. Provider errors are logged and yield an empty list, never an error.
func (c *Client) Fetch(ctx context.Context, query string, limit int) []domain.Fragment {
	raw, err := c.run(ctx, query)
	if err != nil {
		c.logger.Warn("Web search failed, degrading to empty result",
			zap.String("query", truncate(query, 50)),
			zap.Error(err),
		)
		return nil
	}
	if raw == "" {
		return nil
	}

	texts := SplitFragments(raw, c.fragLen)
	urls := ExtractURLs(raw)

	if limit > 0 && len(texts) > limit {
		texts = texts[:limit]
	}
	metrics.WebSearchFragmentsTotal.Add(float64(len(texts)))

	fragments := make([]domain.Fragment, len(texts))
	for i, t := range texts {
		fragments[i] = domain.Fragment{Content: t}
		if i < len(urls) {
			fragments[i].URL = urls[i]
		}
	}
	return fragments
}

// SearchURLs runs the query and returns the deduplicated URLs found in the
// response, in first-seen order.
func (c *Client) SearchURLs(ctx context.Context, query string) []string {
	raw, err := c.run(ctx, query)
	if err != nil {
		c.logger.Warn("Web search failed", zap.Error(err))
		return nil
	}
	return ExtractURLs(raw)
}

// run performs the single blocking provider call.
func (c *Client) run(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}
	if c.baseURL == "" {
		return "", fmt.Errorf("web search provider not configured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse provider url: %w", err)
	}
	q := u.Query()
	q.Set(c.queryParam, query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	return string(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
