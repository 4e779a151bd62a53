// Package strategy defines the hybrid search strategies.
package strategy

// Strategy selects which retrieval sources a search consults.
type Strategy string

// Search strategy constants.
const (
	// VectorOnly queries the persistent index only.
	VectorOnly Strategy = "vector_only"
	// WebOnly queries the live web search provider only.
	WebOnly Strategy = "web_only"
	// Hybrid queries both sources and merges the results.
	Hybrid Strategy = "hybrid"
	// Fallback queries the index first and tops up from web search only when
	// the index returns fewer hits than requested.
	Fallback Strategy = "fallback"
)

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == VectorOnly || s == WebOnly || s == Hybrid || s == Fallback
}

// UsesIndex reports whether the strategy consults the persistent index.
func (s Strategy) UsesIndex() bool {
	return s == VectorOnly || s == Hybrid || s == Fallback
}
