package result

import (
	"strings"
	"testing"

	"github.com/meridianwatch/geodex/internal/domain/chunk"
	"github.com/meridianwatch/geodex/internal/domain/credibility"
)

func TestNewCarriesFields(t *testing.T) {
	meta := chunk.Metadata{Source: "archive", Region: "eastern_europe"}
	cred := credibility.Score{Score: 0.9, Level: credibility.High}

	r := New("chunk text", meta, cred, 0.75, VectorStore)

	if r.Content() != "chunk text" {
		t.Errorf("unexpected content: %q", r.Content())
	}
	if r.Metadata().Region != "eastern_europe" {
		t.Errorf("unexpected region: %q", r.Metadata().Region)
	}
	if r.Credibility().Score != 0.9 {
		t.Errorf("unexpected credibility: %g", r.Credibility().Score)
	}
	if r.Relevance() != 0.75 {
		t.Errorf("unexpected relevance: %g", r.Relevance())
	}
	if r.SourceType() != VectorStore {
		t.Errorf("unexpected source type: %q", r.SourceType())
	}
}

func TestFingerprintShortContent(t *testing.T) {
	r := New("short", chunk.Metadata{}, credibility.Score{}, 0.5, WebSearch)

	if r.Fingerprint() != "short" {
		t.Errorf("unexpected fingerprint: %q", r.Fingerprint())
	}
}

func TestFingerprintTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("a", FingerprintLength) + "unique tail"
	r := New(long, chunk.Metadata{}, credibility.Score{}, 0.5, VectorStore)

	fp := r.Fingerprint()
	if len(fp) != FingerprintLength {
		t.Fatalf("expected fingerprint length %d, got %d", FingerprintLength, len(fp))
	}
	if strings.Contains(fp, "unique") {
		t.Error("fingerprint should not include content past the prefix")
	}
}

func TestFingerprintCollidesOnSharedPrefix(t *testing.T) {
	prefix := strings.Repeat("b", FingerprintLength)
	a := New(prefix+" first variant", chunk.Metadata{}, credibility.Score{}, 0.9, VectorStore)
	b := New(prefix+" second variant", chunk.Metadata{}, credibility.Score{}, 0.4, WebSearch)

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("results sharing a prefix should collide on fingerprint")
	}
}
