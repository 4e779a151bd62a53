package redis

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/meridianwatch/geodex/internal/domain/search/filter"
)

func TestBuildCriteria_Empty(t *testing.T) {
	if got := buildCriteria(filter.Criteria{}); got != "" {
		t.Errorf("expected empty filter, got %q", got)
	}
}

func TestBuildCriteria_SingleTag(t *testing.T) {
	got := buildCriteria(filter.Criteria{Region: "eastern_europe"})
	if got != "@region:{eastern_europe}" {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestBuildCriteria_Conjunction(t *testing.T) {
	got := buildCriteria(filter.Criteria{
		Region:  "middle_east",
		Country: "turkey",
		Source:  "reuters",
	})

	want := "@region:{middle_east} @country:{turkey} @source:{reuters}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildCriteria_EscapesSpecialChars(t *testing.T) {
	got := buildCriteria(filter.Criteria{Source: "foreign-affairs.com"})

	want := `@source:{foreign\-affairs\.com}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestKNNQueryString_NoFilter(t *testing.T) {
	got := knnQueryString(filter.Criteria{}, 5)
	want := "*=>[KNN 5 @__vector $BLOB AS __vector_score]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestKNNQueryString_WithFilter(t *testing.T) {
	got := knnQueryString(filter.Criteria{Region: "baltics"}, 3)
	want := "(@region:{baltics})=>[KNN 3 @__vector $BLOB AS __vector_score]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestKNNQueryString_AliasesDistance(t *testing.T) {
	// The vector field is named __vector, so without the AS alias the yield
	// field would be ____vector_score and never match the parsed name.
	got := knnQueryString(filter.Criteria{}, 1)
	if !strings.Contains(got, "AS "+distanceField) {
		t.Errorf("query must alias the distance yield: %q", got)
	}
}

func TestBuildTagFilter_EscapesSpaces(t *testing.T) {
	got := buildTagFilter("source", "state department")
	if got != `@source:{state\ department}` {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestVectorToBytes(t *testing.T) {
	vec := []float32{1.0, -0.5, 0.25}

	raw := vectorToBytes(vec)
	if len(raw) != 12 {
		t.Fatalf("expected 12 bytes, got %d", len(raw))
	}

	for i, want := range vec {
		bits := binary.LittleEndian.Uint32([]byte(raw)[i*4:])
		if got := math.Float32frombits(bits); got != want {
			t.Errorf("component %d = %g, want %g", i, got, want)
		}
	}
}

func TestVectorToBytes_Empty(t *testing.T) {
	if raw := vectorToBytes(nil); len(raw) != 0 {
		t.Errorf("expected empty encoding, got %d bytes", len(raw))
	}
}
