package model

import (
	"affair-radar/internal/common"
	"affair-radar/internal/features"
)

// Result is one scoring outcome. Factors holds the top-k ranked
// contributions; Contributions the full schema-ordered set, which together
// with BaseValue reconstructs Probability exactly.
type Result struct {
	Probability   float64            `json:"probability"`
	BaseValue     float64            `json:"base_value"`
	Factors       []Factor           `json:"factors"`
	Contributions []float64          `json:"contributions"`
	Imputed       []string           `json:"imputed,omitempty"`
	Effective     map[string]float64 `json:"effective"`
}

// Scorer composes imputer, ensemble, and attribution into one call. It is
// a pure function of its input and the immutable bundle, so one instance
// serves concurrent callers.
type Scorer struct {
	bundle *Bundle
	topK   int
}

// NewScorer wraps a loaded bundle. topK <= 0 selects the default of 10.
func NewScorer(b *Bundle, topK int) *Scorer {
	if topK <= 0 {
		topK = common.DefaultTopK
	}
	return &Scorer{bundle: b, topK: topK}
}

// Version reports the bundle version.
func (s *Scorer) Version() string { return s.bundle.Version }

// Bundle exposes the underlying artifact, read-only.
func (s *Scorer) Bundle() *Bundle { return s.bundle }

// Score builds the schema vector from input (unknown keys ignored, absent
// known keys missing), imputes, and returns probability plus ranked
// attribution. Features absent from the input contribute exactly zero;
// their effective values in the response come from the imputer.
func (s *Scorer) Score(input map[string]float64) *Result {
	vec := features.FromMap(input)
	completed := s.bundle.Imputer.Transform(vec)

	attr := s.bundle.Forest.Attribute(vec)
	ranked := attr.Ranked()
	k := s.topK
	if k > len(ranked) {
		k = len(ranked)
	}

	effective := make(map[string]float64, features.Count())
	for i, name := range features.Columns() {
		effective[name] = completed[i]
	}

	return &Result{
		Probability:   attr.Output,
		BaseValue:     attr.BaseValue,
		Factors:       ranked[:k],
		Contributions: attr.Contributions,
		Imputed:       vec.MissingNames(),
		Effective:     effective,
	}
}
