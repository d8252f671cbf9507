package model

import (
	"sort"

	"affair-radar/internal/features"
)

// FeatureImportance pairs a feature with its mean normalized impurity
// reduction across the forest. This is the diagnostic training-time
// ranking, distinct from per-prediction attribution.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ImportanceRanking returns all features ordered by descending importance,
// ties in schema order.
func (f *Forest) ImportanceRanking() []FeatureImportance {
	cols := features.Columns()
	out := make([]FeatureImportance, len(f.Importance))
	for i, imp := range f.Importance {
		out[i] = FeatureImportance{Feature: cols[i], Importance: imp}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}

// TopImportance returns the k most important features.
func (f *Forest) TopImportance(k int) []FeatureImportance {
	ranked := f.ImportanceRanking()
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}
