package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affair-radar/internal/features"
)

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	vecs, labels := ruleRows(250, 41)
	im, err := FitImputer(vecs)
	require.NoError(t, err)
	f, err := Train(im.TransformAll(vecs), labels, smallConfig())
	require.NoError(t, err)
	return NewBundle(im, f, TrainingInfo{Rows: len(vecs)})
}

func TestScoreTopKDefault(t *testing.T) {
	t.Parallel()

	s := NewScorer(testBundle(t), 0)
	res := s.Score(map[string]float64{features.Age: 0.4, features.SatisfactionRating: 0.9})

	assert.Len(t, res.Factors, 10, "default top-k is 10")
	assert.Len(t, res.Contributions, features.Count(), "full contribution set is preserved")
}

func TestScoreAdditivityBeyondTopK(t *testing.T) {
	t.Parallel()

	s := NewScorer(testBundle(t), 3)
	rng := rand.New(rand.NewSource(17))

	for i := 0; i < 50; i++ {
		in := map[string]float64{}
		for _, name := range features.Columns() {
			if rng.Intn(3) != 0 {
				in[name] = rng.Float64()
			}
		}

		res := s.Score(in)
		assert.Len(t, res.Factors, 3)

		var sum float64
		for _, c := range res.Contributions {
			sum += c
		}
		assert.InDelta(t, res.Probability, res.BaseValue+sum, 1e-9,
			"additivity must hold over all features, not just the surfaced top-k")
		assert.GreaterOrEqual(t, res.Probability, 0.0)
		assert.LessOrEqual(t, res.Probability, 1.0)
	}
}

func TestScoreAllMissing(t *testing.T) {
	t.Parallel()

	s := NewScorer(testBundle(t), 0)
	res := s.Score(map[string]float64{})

	assert.Equal(t, res.BaseValue, res.Probability,
		"knowing nothing must score the population average")
	for i, c := range res.Contributions {
		assert.Zerof(t, c, "feature %d contributed with no inputs", i)
	}
	assert.Len(t, res.Imputed, features.Count())
	assert.Len(t, res.Effective, features.Count(), "effective values come from the imputer")
}

func TestScoreUnknownKeysIgnored(t *testing.T) {
	t.Parallel()

	s := NewScorer(testBundle(t), 0)
	base := s.Score(map[string]float64{features.LoveRating: 0.8})
	extra := s.Score(map[string]float64{features.LoveRating: 0.8, "zodiac_sign": 7})

	assert.Equal(t, base.Probability, extra.Probability, "unknown keys must not change the score")
	assert.Equal(t, base.Contributions, extra.Contributions)
}

func TestScoreImputedNames(t *testing.T) {
	t.Parallel()

	s := NewScorer(testBundle(t), 0)
	res := s.Score(map[string]float64{features.Age: 0.5})

	assert.Len(t, res.Imputed, features.Count()-1)
	assert.NotContains(t, res.Imputed, features.Age)
	assert.Contains(t, res.Imputed, features.DesireRating)
}

func TestScoreDeterministic(t *testing.T) {
	t.Parallel()

	s := NewScorer(testBundle(t), 0)
	in := map[string]float64{features.SatisfactionRating: 0.1, features.Age: 0.7}

	assert.Equal(t, s.Score(in), s.Score(in))
}

// Raising the engineered rule feature must not lower its average credited
// contribution across random contexts.
func TestScoreRuleFeatureMonotoneOnAverage(t *testing.T) {
	t.Parallel()

	s := NewScorer(testBundle(t), 0)
	ruleIdx := features.Index(features.SatisfactionRating)
	rng := rand.New(rand.NewSource(29))

	var lowSum, highSum float64
	const samples = 60
	for i := 0; i < samples; i++ {
		in := map[string]float64{}
		for _, name := range features.Columns() {
			in[name] = rng.Float64()
		}

		in[features.SatisfactionRating] = 0.15
		lowSum += s.Score(in).Contributions[ruleIdx]

		in[features.SatisfactionRating] = 0.85
		highSum += s.Score(in).Contributions[ruleIdx]
	}

	assert.Greater(t, highSum/samples, lowSum/samples,
		"raising the rule feature should raise its average contribution")
}

func TestScoreProbabilityTracksRule(t *testing.T) {
	t.Parallel()

	s := NewScorer(testBundle(t), 0)

	in := map[string]float64{}
	for _, name := range features.Columns() {
		in[name] = 0.5
	}

	in[features.SatisfactionRating] = 0.9
	high := s.Score(in).Probability
	in[features.SatisfactionRating] = 0.1
	low := s.Score(in).Probability

	assert.Greater(t, high, low)
	assert.Greater(t, high, 0.5, "deep in the positive region the score should be high")
	assert.Less(t, low, 0.5)
}

func TestScorerVersion(t *testing.T) {
	t.Parallel()

	b := testBundle(t)
	s := NewScorer(b, 0)
	assert.Equal(t, b.Version, s.Version())
	assert.Same(t, b, s.Bundle())
}

func TestScoreEffectiveValues(t *testing.T) {
	t.Parallel()

	b := testBundle(t)
	s := NewScorer(b, 0)
	res := s.Score(map[string]float64{features.Age: 0.33})

	assert.Equal(t, 0.33, res.Effective[features.Age])
	loveIdx := features.Index(features.LoveRating)
	assert.Equal(t, b.Imputer.Medians[loveIdx], res.Effective[features.LoveRating],
		"missing features surface their imputed value")
	assert.False(t, math.IsNaN(res.Effective[features.DesireRating]))
}
