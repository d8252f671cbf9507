package model

import (
	"fmt"
	"math"
	"sort"

	"affair-radar/internal/features"
)

// Imputer fills missing feature values with the per-column median observed
// during fitting. Fitted once per training run, then read-only.
type Imputer struct {
	Medians []float64 `json:"medians"`
}

// FitImputer computes per-column medians over the non-missing entries of
// vecs. Columns with zero observations fail with EmptyColumnError.
func FitImputer(vecs []features.Vector) (*Imputer, error) {
	if len(vecs) == 0 {
		return nil, fmt.Errorf("imputer fit: no rows")
	}

	n := features.Count()
	medians := make([]float64, n)
	col := make([]float64, 0, len(vecs))

	for i := 0; i < n; i++ {
		col = col[:0]
		for _, v := range vecs {
			if !math.IsNaN(v[i]) {
				col = append(col, v[i])
			}
		}
		if len(col) == 0 {
			return nil, &EmptyColumnError{Column: features.Columns()[i]}
		}
		medians[i] = median(col)
	}

	return &Imputer{Medians: medians}, nil
}

// Transform returns a copy of v with missing entries replaced by the fitted
// medians. Deterministic and idempotent; known values pass through.
func (im *Imputer) Transform(v features.Vector) features.Vector {
	out := v.Clone()
	for i := range out {
		if math.IsNaN(out[i]) {
			out[i] = im.Medians[i]
		}
	}
	return out
}

// TransformAll applies Transform to every vector.
func (im *Imputer) TransformAll(vecs []features.Vector) []features.Vector {
	out := make([]features.Vector, len(vecs))
	for i, v := range vecs {
		out[i] = im.Transform(v)
	}
	return out
}

// median sorts its argument in place. Even-length input averages the two
// middle values.
func median(xs []float64) float64 {
	sort.Float64s(xs)
	m := len(xs) / 2
	if len(xs)%2 == 1 {
		return xs[m]
	}
	return (xs[m-1] + xs[m]) / 2
}
