package search

import (
	"sort"

	"github.com/meridianwatch/geodex/internal/domain/search/result"
)

// rank applies the merge pipeline in fixed order: relevance threshold, stable
// sort by relevance descending, content dedup, truncate to n. Dedup runs after
// the sort so the kept copy of a duplicate is always the most relevant one.
func rank(hits []result.Result, minRelevance float64, n int) []result.Result {
	kept := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		if h.Relevance() >= minRelevance {
			kept = append(kept, h)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Relevance() > kept[j].Relevance()
	})

	seen := make(map[string]bool, len(kept))
	out := kept[:0]
	for i := range kept {
		fp := kept[i].Fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, kept[i])
	}

	if len(out) > n {
		out = out[:n]
	}
	return out
}
