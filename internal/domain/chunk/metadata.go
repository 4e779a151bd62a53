package chunk

import "strconv"

// Metadata is the typed chunk metadata mapping. Fields are restricted to
// primitives; encoding to storage fields is explicit per field rather than a
// runtime type switch over arbitrary values.
type Metadata struct {
	Source       string
	URL          string
	Region       string
	Country      string
	Date         string // ISO 8601 date of the document
	Title        string
	DocumentType string

	Year        int
	Month       int
	ChunkIndex  int
	TotalChunks int
}

// Tags returns the string-valued metadata fields for storage. Unset fields
// encode as empty strings so that a re-upsert clears stale values.
func (m *Metadata) Tags() map[string]string {
	return map[string]string{
		"source":        m.Source,
		"url":           m.URL,
		"region":        m.Region,
		"country":       m.Country,
		"date":          m.Date,
		"title":         m.Title,
		"document_type": m.DocumentType,
	}
}

// Numerics returns the numeric metadata fields for storage.
func (m *Metadata) Numerics() map[string]float64 {
	return map[string]float64{
		"year":         float64(m.Year),
		"month":        float64(m.Month),
		"chunk_index":  float64(m.ChunkIndex),
		"total_chunks": float64(m.TotalChunks),
	}
}

// MetadataFromFields reconstructs Metadata from flat storage fields.
func MetadataFromFields(fields map[string]string) Metadata {
	m := Metadata{
		Source:       fields["source"],
		URL:          fields["url"],
		Region:       fields["region"],
		Country:      fields["country"],
		Date:         fields["date"],
		Title:        fields["title"],
		DocumentType: fields["document_type"],
	}
	m.Year = parseIntField(fields, "year")
	m.Month = parseIntField(fields, "month")
	m.ChunkIndex = parseIntField(fields, "chunk_index")
	m.TotalChunks = parseIntField(fields, "total_chunks")
	return m
}

func parseIntField(fields map[string]string, key string) int {
	v, ok := fields[key]
	if !ok || v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// ParseDate fills Year and Month from the Date field if it is an ISO date.
// Malformed dates leave both at zero.
func (m *Metadata) ParseDate() {
	if len(m.Date) >= 4 {
		if y, err := strconv.Atoi(m.Date[:4]); err == nil {
			m.Year = y
		}
	}
	if len(m.Date) >= 7 {
		if mo, err := strconv.Atoi(m.Date[5:7]); err == nil && mo >= 1 && mo <= 12 {
			m.Month = mo
		}
	}
}
