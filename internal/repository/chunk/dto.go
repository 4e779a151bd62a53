package chunk

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/meridianwatch/geodex/internal/db"
	domchunk "github.com/meridianwatch/geodex/internal/domain/chunk"
	"github.com/meridianwatch/geodex/internal/domain/search/result"
)

// Internal hash fields that carry chunk payload rather than metadata. The
// double underscore keeps them out of the metadata namespace. fieldDistance
// is not stored: it is the alias the KNN clause yields the raw cosine
// distance under, and it must be requested explicitly because RETURN limits
// the reply to the listed attributes.
const (
	fieldContent  = "__content"
	fieldVector   = "__vector"
	fieldDistance = "__vector_score"
)

// buildHashFields flattens a chunk into its stored hash representation.
// Metadata tags and numerics are written field-per-field so the FT index can
// filter on them directly.
func buildHashFields(c *domchunk.Chunk, vector []float32) map[string]string {
	meta := c.Metadata()
	tags := meta.Tags()
	nums := meta.Numerics()

	fields := make(map[string]string, len(tags)+len(nums)+3)
	// Empty tags are written as empty strings, not skipped: HSET merges
	// fields, so skipping would leave a stale value from an earlier upsert
	// filterable. Empty tag values are not indexed.
	for k, v := range tags {
		fields[k] = v
	}
	for k, v := range nums {
		fields[k] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	fields["document_id"] = c.DocumentID()
	fields[fieldContent] = c.Text()
	fields[fieldVector] = encodeVector(vector)
	return fields
}

// returnFields lists the attributes hydrated back on a KNN hit. The vector
// itself is never returned; the distance alias must be listed or the backend
// omits it from the reply.
func returnFields() []string {
	return []string{
		fieldContent, fieldDistance,
		"source", "url", "region", "country", "date", "title", "document_type", "document_id",
		"year", "month", "chunk_index", "total_chunks",
	}
}

// parseEntry hydrates a search entry into an index hit. Relevance is derived
// from the cosine distance as 1-distance clamped to [0, 1].
func parseEntry(entry db.SearchEntry, keyPrefix string) result.IndexHit {
	return result.IndexHit{
		ChunkID:   strings.TrimPrefix(entry.Key, keyPrefix),
		Text:      entry.Fields[fieldContent],
		Metadata:  domchunk.MetadataFromFields(entry.Fields),
		Relevance: relevanceFromDistance(entry.Distance),
	}
}

func relevanceFromDistance(distance float64) float64 {
	if math.IsNaN(distance) {
		return 0
	}
	rel := 1 - distance
	if rel < 0 {
		return 0
	}
	if rel > 1 {
		return 1
	}
	return rel
}

// documentQuery matches every chunk of a document by its document_id tag.
func documentQuery(documentID string) string {
	return fmt.Sprintf("@document_id:{%s}", tagEscaper.Replace(documentID))
}

// Document IDs are lowercase hex, but the escaper also covers values that
// arrive through config or external callers.
var tagEscaper = strings.NewReplacer(
	",", "\\,", ".", "\\.", "<", "\\<", ">", "\\>",
	"{", "\\{", "}", "\\}", "\"", "\\\"", "'", "\\'",
	":", "\\:", ";", "\\;", "!", "\\!", "@", "\\@",
	"#", "\\#", "$", "\\$", "%", "\\%", "^", "\\^",
	"&", "\\&", "*", "\\*", "(", "\\(", ")", "\\)",
	"-", "\\-", "+", "\\+", "=", "\\=", "~", "\\~",
	" ", "\\ ",
)

func encodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
