// Package dataset acquires and harmonizes the study datasets the model
// trains on. Each source arrives with its own column names and scales and
// is mapped onto the shared feature schema; values a source never measured
// stay absent rather than zero.
package dataset

import (
	"affair-radar/internal/features"
)

// Row is one harmonized observation. Features holds only the values the
// source actually measured; Label is nil when the source did not record
// the outcome for this respondent.
type Row struct {
	Source   string             `json:"source"`
	Features map[string]float64 `json:"features"`
	Label    *int               `json:"label,omitempty"`
}

// Vector maps the row onto the schema. Absent features become missing.
func (r Row) Vector() features.Vector {
	return features.FromMap(r.Features)
}

// Labeled reports whether the outcome is known.
func (r Row) Labeled() bool { return r.Label != nil }

// Matrix converts rows into training inputs, keeping only labeled rows and
// reporting how many were dropped for a missing outcome. Order is
// preserved.
func Matrix(rows []Row) (vecs []features.Vector, labels []int, dropped int) {
	for _, r := range rows {
		if r.Label == nil {
			dropped++
			continue
		}
		vecs = append(vecs, r.Vector())
		labels = append(labels, *r.Label)
	}
	return vecs, labels, dropped
}

// SourceCounts tallies rows per source name.
func SourceCounts(rows []Row) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Source]++
	}
	return counts
}

func label(v int) *int { return &v }
