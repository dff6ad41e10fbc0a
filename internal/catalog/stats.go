package catalog

import "heroes/internal/models"

// Stats summarises a record collection.
type Stats struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Inactive     int            `json:"inactive"`
	Dead         int            `json:"dead"`
	Affiliations map[string]int `json:"affiliations"`
	Universes    map[string]int `json:"universes"`
}

// ByStatus returns the tally for s, or 0 for an undefined status.
func (s Stats) ByStatus(st models.Status) int {
	switch st {
	case models.StatusActive:
		return s.Active
	case models.StatusInactive:
		return s.Inactive
	case models.StatusDead:
		return s.Dead
	}
	return 0
}

// Aggregate counts records by status, affiliation and universe.
// Unknown statuses only contribute to Total; empty affiliations and universes
// are left out of their maps.
func Aggregate(records []models.Character) Stats {
	st := Stats{
		Total:        len(records),
		Affiliations: map[string]int{},
		Universes:    map[string]int{},
	}
	for _, rec := range records {
		switch rec.Status {
		case models.StatusActive:
			st.Active++
		case models.StatusInactive:
			st.Inactive++
		case models.StatusDead:
			st.Dead++
		}
		if rec.Affiliation != "" {
			st.Affiliations[rec.Affiliation]++
		}
		if rec.Universe != "" {
			st.Universes[rec.Universe]++
		}
	}
	return st
}
