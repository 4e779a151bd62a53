// Package filter defines the metadata filter applied to index queries.
package filter

// Criteria is a conjunction of equality constraints over chunk metadata.
// Empty fields impose no constraint; a fully empty Criteria matches everything.
type Criteria struct {
	Region     string
	Country    string
	Source     string
	DocumentID string
}

// Condition is a single field equality constraint.
type Condition struct {
	Field string
	Value string
}

// IsEmpty reports whether the criteria impose no constraint.
func (c Criteria) IsEmpty() bool {
	return c.Region == "" && c.Country == "" && c.Source == "" && c.DocumentID == ""
}

// Conditions returns the non-empty constraints in a fixed field order.
func (c Criteria) Conditions() []Condition {
	var conds []Condition
	if c.Region != "" {
		conds = append(conds, Condition{Field: "region", Value: c.Region})
	}
	if c.Country != "" {
		conds = append(conds, Condition{Field: "country", Value: c.Country})
	}
	if c.Source != "" {
		conds = append(conds, Condition{Field: "source", Value: c.Source})
	}
	if c.DocumentID != "" {
		conds = append(conds, Condition{Field: "document_id", Value: c.DocumentID})
	}
	return conds
}
