package geodex

import (
	"time"

	"go.uber.org/zap"

	"github.com/meridianwatch/geodex/internal/retry"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	username string
	password string
	db       int

	openAIKey     string
	openAIBaseURL string
	model         string
	dimensions    int
	batchSize     int
	cacheSize     int
	retryPolicy   retry.Policy

	webSearchURL     string
	webQueryParam    string
	webTimeout       time.Duration
	webRatePerSecond float64
	fragmentLength   int

	collection      string
	hnswM           int
	hnswEFConstruct int

	chunkSize    int
	chunkOverlap int

	nResults        int
	minRelevance    float64
	webResultsRatio float64

	trustedDomains    []string
	suspiciousDomains []string

	logger *zap.Logger
}

// WithRedis sets the vector store address(es).
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) { c.addrs = addrs }
}

// WithAuth sets vector store credentials.
func WithAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithOpenAI configures the embedding provider. baseURL may be empty for the
// public API.
func WithOpenAI(apiKey, baseURL, model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.openAIKey = apiKey
		c.openAIBaseURL = baseURL
		c.model = model
		c.dimensions = dimensions
	}
}

// WithEmbeddingRetry overrides the provider retry policy.
func WithEmbeddingRetry(p retry.Policy) Option {
	return func(c *clientConfig) { c.retryPolicy = p }
}

// WithEmbeddingCache bounds the in-process embedding cache.
func WithEmbeddingCache(size int) Option {
	return func(c *clientConfig) { c.cacheSize = size }
}

// WithBatchSize caps texts per embedding provider call.
func WithBatchSize(n int) Option {
	return func(c *clientConfig) { c.batchSize = n }
}

// WithWebSearch enables the live web search source.
func WithWebSearch(baseURL string) Option {
	return func(c *clientConfig) { c.webSearchURL = baseURL }
}

// WithWebSearchTuning adjusts the web search adapter.
func WithWebSearchTuning(queryParam string, timeout time.Duration, ratePerSecond float64, fragmentLength int) Option {
	return func(c *clientConfig) {
		c.webQueryParam = queryParam
		c.webTimeout = timeout
		c.webRatePerSecond = ratePerSecond
		c.fragmentLength = fragmentLength
	}
}

// WithCollection sets the chunk collection name.
func WithCollection(name string) Option {
	return func(c *clientConfig) { c.collection = name }
}

// WithHNSW sets vector index build parameters.
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	}
}

// WithChunking sets document splitting parameters.
func WithChunking(size, overlap int) Option {
	return func(c *clientConfig) {
		c.chunkSize = size
		c.chunkOverlap = overlap
	}
}

// WithSearchDefaults overrides per-call search defaults.
func WithSearchDefaults(nResults int, minRelevance, webResultsRatio float64) Option {
	return func(c *clientConfig) {
		c.nResults = nResults
		c.minRelevance = minRelevance
		c.webResultsRatio = webResultsRatio
	}
}

// WithTrustedDomains replaces the built-in trusted domain list.
func WithTrustedDomains(domains ...string) Option {
	return func(c *clientConfig) { c.trustedDomains = domains }
}

// WithSuspiciousDomains replaces the built-in suspicious domain list.
func WithSuspiciousDomains(domains ...string) Option {
	return func(c *clientConfig) { c.suspiciousDomains = domains }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
