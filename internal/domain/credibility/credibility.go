// Package credibility scores the trustworthiness of a document source from
// static domain lists and light content heuristics. Evaluation is a pure
// function: same inputs always produce the same score, no I/O.
package credibility

import (
	"fmt"
	"net/url"
	"strings"
)

// Level classifies a credibility score.
type Level string

// Credibility levels, derived from fixed score breakpoints.
const (
	High       Level = "high"
	Medium     Level = "medium"
	Low        Level = "low"
	Suspicious Level = "suspicious"
)

// Score breakpoints for level derivation.
const (
	highThreshold   = 0.8
	mediumThreshold = 0.5
	lowThreshold    = 0.3
)

// minContentLength is the content length below which a short-content penalty applies.
const minContentLength = 50

// shortContentPenalty is subtracted when content is shorter than minContentLength.
const shortContentPenalty = 0.1

// Flag values attached to a Score.
const (
	FlagSuspiciousDomain = "suspicious_domain"
	FlagShortContent     = "short_content"
)

// Score is the credibility assessment of a single source/document pair.
type Score struct {
	Score     float64  `json:"score"`
	Level     Level    `json:"level"`
	Reasoning string   `json:"reasoning"`
	Verified  bool     `json:"verified"`
	Flags     []string `json:"flags,omitempty"`
}

// DefaultTrustedDomains lists institutional and established media domains.
// Matching is by substring containment against the URL host.
var DefaultTrustedDomains = []string{
	"gov.pl", "europa.eu", "nato.int", "state.gov", "un.org",
	"worldbank.org", "imf.org", "who.int", "oecd.org",
	"reuters.com", "bloomberg.com", "apnews.com", "bbc.com",
	"pap.pl", "osw.waw.pl", "pism.pl",
}

// DefaultSuspiciousDomains lists domains flagged as likely disinformation vectors.
var DefaultSuspiciousDomains = []string{
	"rt.com", "sputniknews.com", "tass.com",
	"globalresearch.ca", "infowars.com",
}

// Evaluator scores sources against configured domain lists.
type Evaluator struct {
	trusted    []string
	suspicious []string
}

// NewEvaluator creates an Evaluator. Empty lists fall back to the defaults.
func NewEvaluator(trusted, suspicious []string) *Evaluator {
	if len(trusted) == 0 {
		trusted = DefaultTrustedDomains
	}
	if len(suspicious) == 0 {
		suspicious = DefaultSuspiciousDomains
	}
	return &Evaluator{trusted: trusted, suspicious: suspicious}
}

// Evaluate scores a source. The url and content arguments may be empty.
func (e *Evaluator) Evaluate(source, rawURL, content string) Score {
	score := 0.5
	reasoning := "Standard source verification."
	verified := false
	var flags []string

	if rawURL != "" {
		domain := extractDomain(rawURL)
		switch {
		case matchesAny(domain, e.trusted):
			score = 0.9
			reasoning = fmt.Sprintf("Domain %s is on the trusted institution/media list.", domain)
			verified = true
		case matchesAny(domain, e.suspicious):
			score = 0.1
			reasoning = fmt.Sprintf("WARNING: domain %s is flagged as a potential disinformation source.", domain)
			flags = append(flags, FlagSuspiciousDomain)
		}
	}

	if !verified && source != "" {
		lower := strings.ToLower(source)
		switch {
		case strings.Contains(lower, "gov") ||
			strings.Contains(lower, "government") ||
			strings.Contains(lower, "ministry") ||
			strings.Contains(lower, "ministerstwo"):
			score = max(score, 0.8)
			reasoning = "Governmental/official source."
			verified = true
		case strings.Contains(lower, "official"):
			score = max(score, 0.7)
		}
	}

	if content != "" && len(content) < minContentLength {
		score -= shortContentPenalty
		flags = append(flags, FlagShortContent)
		reasoning += " Content is very short, which may indicate low quality."
	}

	return Score{
		Score:     score,
		Level:     LevelFor(score),
		Reasoning: reasoning,
		Verified:  verified,
		Flags:     flags,
	}
}

// LevelFor derives the Level from a score using the fixed breakpoints. Levels
// are never set independently of the score.
func LevelFor(score float64) Level {
	switch {
	case score >= highThreshold:
		return High
	case score >= mediumThreshold:
		return Medium
	case score >= lowThreshold:
		return Low
	default:
		return Suspicious
	}
}

// HasFlag reports whether the score carries the given flag.
func (s *Score) HasFlag(flag string) bool {
	for _, f := range s.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// extractDomain returns the host part of a URL, or the raw string if it does
// not parse as a URL.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

func matchesAny(domain string, list []string) bool {
	for _, d := range list {
		if strings.Contains(domain, d) {
			return true
		}
	}
	return false
}
