// Package embedding provides the embedding pipeline: a bounded in-process
// cache in front of the provider and position-preserving batch vectorization.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meridianwatch/geodex/internal/domain"
)

// DefaultCacheSize bounds the in-process embedding cache.
const DefaultCacheSize = 1000

// cacheKeyLength is the hex prefix length of the sha256 content hash used as
// the cache key. 16 hex chars (64 bits) keeps collisions negligible at cache
// scale while keeping keys short.
const cacheKeyLength = 16

// provider is the consumer interface of the upstream embedder.
type provider interface {
	domain.Embedder
	domain.BatchEmbedder
}

// CacheStats is a point-in-time snapshot of cache effectiveness.
type CacheStats struct {
	Size    int   `json:"size"`
	MaxSize int   `json:"max_size"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// CachedEmbedder decorates a provider with a bounded FIFO cache keyed by
// content hash. Eviction follows insertion order, not access order: a hit
// does not refresh an entry's position.
type CachedEmbedder struct {
	inner   provider
	maxSize int

	mu      sync.Mutex
	entries map[string][]float32
	order   []string
	hits    int64
	misses  int64

	cacheTotal *prometheus.CounterVec
}

// NewCached creates a caching decorator. cacheTotal is a counter vec with
// label "result" ("hit"/"miss"), passed explicitly.
func NewCached(inner provider, maxSize int, cacheTotal *prometheus.CounterVec) *CachedEmbedder {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &CachedEmbedder{
		inner:      inner,
		maxSize:    maxSize,
		entries:    make(map[string][]float32, maxSize),
		order:      make([]string, 0, maxSize),
		cacheTotal: cacheTotal,
	}
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
// Cache miss: full EmbeddingResult from inner.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := cacheKey(text)

	if vec, ok := c.get(key); ok {
		c.incCache("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.incCache("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.put(key, result.Embedding)
	return result, nil
}

// BatchEmbed serves cached texts from memory and sends only the misses to the
// provider in a single call. Result order matches input order.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	vectors := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		if vec, ok := c.get(cacheKey(text)); ok {
			c.incCache("hit")
			vectors[i] = vec
			continue
		}
		c.incCache("miss")
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return domain.BatchEmbeddingResult{Embeddings: vectors}, nil
	}

	result, err := c.inner.BatchEmbed(ctx, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed %d texts: %w", len(missTexts), err)
	}
	if len(result.Embeddings) != len(missTexts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"provider returned %d embeddings for %d texts: %w",
			len(result.Embeddings), len(missTexts), domain.ErrEmbeddingProvider)
	}

	for j, i := range missIdx {
		vectors[i] = result.Embeddings[j]
		c.put(cacheKey(texts[i]), result.Embeddings[j])
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   vectors,
		PromptTokens: result.PromptTokens,
		TotalTokens:  result.TotalTokens,
	}, nil
}

// Stats returns a snapshot of the cache counters.
func (c *CachedEmbedder) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

// Clear drops all cached entries but keeps hit/miss counters.
func (c *CachedEmbedder) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]float32, c.maxSize)
	c.order = c.order[:0]
}

func (c *CachedEmbedder) get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vec, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return vec, ok
}

func (c *CachedEmbedder) put(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = vec
		return
	}

	if len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = vec
	c.order = append(c.order, key)
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])[:cacheKeyLength]
}
