package db

import "github.com/meridianwatch/geodex/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Criteria     filter.Criteria
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. Distance is the raw
// vector distance reported by the backend; relevance derivation happens in the
// repository layer.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
