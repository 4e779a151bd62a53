package websearch

import (
	"regexp"
	"strings"
)

// urlPattern is a permissive scan for http(s) and bare www URLs in free text.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+|www\.[^\s<>"']+`)

// ExtractURLs scans free text for URLs, trims trailing punctuation artifacts,
// and deduplicates while preserving first-seen order.
func ExtractURLs(text string) []string {
	if text == "" {
		return nil
	}

	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool, len(matches))
	var urls []string
	for _, u := range matches {
		u = strings.TrimRight(u, ".,;:!?)")
		if u == "" || seen[u] {
			continue
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "www.") {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}

	return urls
}
