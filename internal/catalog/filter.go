// Package catalog holds the pure, in-memory operations over a snapshot of
// character records: filtering, aggregation and spreadsheet export.
package catalog

import (
	"strings"

	"heroes/internal/models"
)

// Criteria are the active predicates of a list view. Zero values impose no
// constraint.
type Criteria struct {
	// Text is matched case-insensitively as a substring of name or real name.
	Text      string           `json:"text" query:"q"`
	Status    models.Status    `json:"status" query:"status"`
	Alignment models.Alignment `json:"alignment" query:"alignment"`
}

// IsZero reports whether no predicate is active.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Text) == "" && c.Status == "" && c.Alignment == ""
}

// Match reports whether rec satisfies every active predicate.
func (c Criteria) Match(rec models.Character) bool {
	if strings.TrimSpace(c.Text) != "" {
		needle := strings.ToLower(c.Text)
		if !strings.Contains(strings.ToLower(rec.Name), needle) &&
			!strings.Contains(strings.ToLower(rec.RealName), needle) {
			return false
		}
	}
	if c.Status != "" && rec.Status != c.Status {
		return false
	}
	if c.Alignment != "" && rec.Alignment != c.Alignment {
		return false
	}
	return true
}

// Filter returns the records matching c, in input order. The input slice is
// never modified and the result never aliases it.
func Filter(records []models.Character, c Criteria) []models.Character {
	out := make([]models.Character, 0, len(records))
	for _, rec := range records {
		if c.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}
