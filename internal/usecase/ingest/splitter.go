// Package ingest turns raw documents into embedded, indexed chunks.
package ingest

import (
	"strings"
	"unicode/utf8"
)

// Default splitting parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// defaultSeparators ordered from strongest to weakest structural boundary.
var defaultSeparators = []string{"\n\n", "\n", ". ", ", ", " "}

// Splitter cuts text into chunks of at most Size bytes along structural
// boundaries, carrying Overlap bytes of trailing context into the next chunk.
// A separator is tried only when the text exceeds Size; weaker separators are
// used only for pieces the stronger ones could not cut small enough.
type Splitter struct {
	Size       int
	Overlap    int
	Separators []string
}

// NewSplitter creates a splitter with the given size and overlap. Non-positive
// values fall back to defaults.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	return &Splitter{Size: size, Overlap: overlap, Separators: defaultSeparators}
}

// Split returns trimmed chunks covering the whole text. Chunks are not
// filtered by minimum length here; the caller decides what is too short to
// keep.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	pieces := s.fragment(text, s.Separators)
	return s.merge(pieces)
}

// fragment recursively cuts text into pieces no longer than Size, trying each
// separator in order and falling back to a hard cut when none apply.
func (s *Splitter) fragment(text string, seps []string) []string {
	if len(text) <= s.Size {
		return []string{text}
	}
	if len(seps) == 0 {
		return hardCut(text, s.Size)
	}

	sep := seps[0]
	if !strings.Contains(text, sep) {
		return s.fragment(text, seps[1:])
	}

	var out []string
	for _, part := range splitKeepSep(text, sep) {
		if len(part) > s.Size {
			out = append(out, s.fragment(part, seps[1:])...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// merge greedily packs pieces into chunks of at most Size bytes, plus up to
// Overlap bytes of carried context. When a chunk is flushed, its last Overlap
// bytes seed the next one so neighboring chunks share context; a buffer
// holding only carried context always accepts the next piece, so the carry
// alone never becomes a chunk.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var buf strings.Builder
	carried := 0

	for _, piece := range pieces {
		if buf.Len() > carried && buf.Len()+len(piece) > s.Size {
			chunk := strings.TrimSpace(buf.String())
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			tail := overlapTail(buf.String(), s.Overlap)
			buf.Reset()
			buf.WriteString(tail)
			carried = len(tail)
		}
		buf.WriteString(piece)
	}

	if buf.Len() > carried || len(chunks) == 0 {
		if last := strings.TrimSpace(buf.String()); last != "" {
			chunks = append(chunks, last)
		}
	}
	return chunks
}

// splitKeepSep splits by sep keeping the separator attached to the preceding
// part, so joining the parts reproduces the input exactly.
func splitKeepSep(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += sep
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// hardCut slices text every n bytes, snapping each cut back to a rune start.
func hardCut(text string, n int) []string {
	var out []string
	for len(text) > n {
		cut := n
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = n
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// overlapTail returns the last n bytes of text, snapped forward to a rune
// boundary and extended left to the nearest whitespace so the overlap does not
// start mid-word.
func overlapTail(text string, n int) string {
	if n <= 0 || len(text) <= n {
		if n <= 0 {
			return ""
		}
		return text
	}

	start := len(text) - n
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	if idx := strings.IndexAny(text[start:], " \n"); idx >= 0 && idx < n/4 {
		start += idx + 1
	}
	return text[start:]
}
