package domain

import "context"

// Fragment is a bounded slice of a web search response with best-effort
// provenance. URL, Title and Date may be empty when the provider response
// carries no extractable source markers.
type Fragment struct {
	Content string
	URL     string
	Title   string
	Date    string
}

// WebSearcher fetches live web content for a query. Implementations degrade
// to an empty slice on provider failure instead of returning an error.
type WebSearcher interface {
	Fetch(ctx context.Context, query string, limit int) []Fragment
}
