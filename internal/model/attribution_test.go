package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affair-radar/internal/features"
)

func trainedForest(t *testing.T, n int, seed int64) *Forest {
	t.Helper()
	vecs, labels := ruleRows(n, seed)
	f, err := Train(vecs, labels, smallConfig())
	require.NoError(t, err)
	return f
}

func TestAttributeAdditivity(t *testing.T) {
	t.Parallel()

	f := trainedForest(t, 200, 21)
	rng := rand.New(rand.NewSource(9))

	for i := 0; i < 200; i++ {
		x := make(features.Vector, features.Count())
		for j := range x {
			if rng.Intn(4) == 0 {
				x[j] = math.NaN()
			} else {
				x[j] = rng.Float64()
			}
		}

		attr := f.Attribute(x)
		raw := f.PredictProba(x)[1]

		// The decomposition reconstructs the ensemble output.
		assert.InDelta(t, raw, attr.Output, 1e-6, "base + contributions must equal the raw output")

		var sum float64
		for _, c := range attr.Contributions {
			sum += c
		}
		assert.InDelta(t, attr.Output, attr.BaseValue+sum, 1e-12)
	}
}

func TestAttributeAllMissing(t *testing.T) {
	t.Parallel()

	f := trainedForest(t, 200, 23)
	attr := f.Attribute(features.NewVector())

	for i, c := range attr.Contributions {
		assert.Zerof(t, c, "feature %d contributed without being observed", i)
	}
	assert.Equal(t, attr.BaseValue, attr.Output, "all-missing output must be the baseline exactly")
	assert.InDelta(t, f.PredictProba(features.NewVector())[1], attr.Output, 1e-9)
	assert.InDelta(t, f.BaseValue(), attr.BaseValue, 1e-12)
}

func TestAttributeHandTree(t *testing.T) {
	t.Parallel()

	f := &Forest{Trees: []Tree{handTree()}}

	x := features.NewVector()
	x[0] = 0.2
	attr := f.Attribute(x)

	assert.InDelta(t, 0.36, attr.BaseValue, 1e-12)
	assert.InDelta(t, 0.1-0.36, attr.Contributions[0], 1e-12, "feature 0 moves the expectation from root to left leaf")
	assert.InDelta(t, 0.1, attr.Output, 1e-12)

	x[0] = 0.9
	attr = f.Attribute(x)
	assert.InDelta(t, 0.75-0.36, attr.Contributions[0], 1e-12)
	assert.InDelta(t, 0.75, attr.Output, 1e-12)
}

func TestAttributeRepeatedFeatureAccumulates(t *testing.T) {
	t.Parallel()

	// Feature 0 splits twice along one path; its contributions sum.
	tree := Tree{Nodes: []Node{
		{Feature: 0, Threshold: 0.5, Left: 1, Right: 4, Samples: 8, Value: []float64{0.5, 0.5}},
		{Feature: 0, Threshold: 0.25, Left: 2, Right: 3, Samples: 4, Value: []float64{0.75, 0.25}},
		{Feature: -1, Samples: 2, Value: []float64{1, 0}},
		{Feature: -1, Samples: 2, Value: []float64{0.5, 0.5}},
		{Feature: -1, Samples: 4, Value: []float64{0.25, 0.75}},
	}}
	f := &Forest{Trees: []Tree{tree}}

	x := features.NewVector()
	x[0] = 0.1
	attr := f.Attribute(x)

	// Path root -> node1 -> leaf2: (0.25-0.5) + (0-0.25) = -0.5.
	assert.InDelta(t, -0.5, attr.Contributions[0], 1e-12)
	assert.InDelta(t, 0.0, attr.Output, 1e-12)
}

func TestAttributePartialMissingBlends(t *testing.T) {
	t.Parallel()

	// Root splits on feature 1 (missing), children split on feature 0
	// (known). Feature 1 must contribute nothing while feature 0 picks up
	// cover-weighted credit from both branches.
	tree := Tree{Nodes: []Node{
		{Feature: 1, Threshold: 0, Left: 1, Right: 4, Samples: 10, Value: []float64{0.56, 0.44}},
		{Feature: 0, Threshold: 0.5, Left: 2, Right: 3, Samples: 5, Value: []float64{0.6, 0.4}},
		{Feature: -1, Samples: 3, Value: []float64{1, 0}},
		{Feature: -1, Samples: 2, Value: []float64{0, 1}},
		{Feature: 0, Threshold: 0.5, Left: 5, Right: 6, Samples: 5, Value: []float64{0.52, 0.48}},
		{Feature: -1, Samples: 4, Value: []float64{0.4, 0.6}},
		{Feature: -1, Samples: 1, Value: []float64{1, 0}},
	}}
	f := &Forest{Trees: []Tree{tree}}

	x := features.NewVector()
	x[0] = 0.3
	attr := f.Attribute(x)

	assert.Zero(t, attr.Contributions[1], "missing feature must not be credited")
	// 0.5*(0 - 0.4) + 0.5*(0.6 - 0.48) on the positive class.
	assert.InDelta(t, 0.5*(0-0.4)+0.5*(0.6-0.48), attr.Contributions[0], 1e-12)
	assert.InDelta(t, attr.BaseValue+attr.Contributions[0], attr.Output, 1e-12)
	assert.InDelta(t, f.PredictProba(x)[1], attr.Output, 1e-12)
}

func TestAttributionReproducible(t *testing.T) {
	t.Parallel()

	vecs, labels := ruleRows(150, 31)
	a, err := Train(vecs, labels, smallConfig())
	require.NoError(t, err)
	b, err := Train(vecs, labels, smallConfig())
	require.NoError(t, err)

	x := vecs[17]
	assert.Equal(t, a.Attribute(x), b.Attribute(x), "same seed and data must attribute identically")
}

func TestRankedOrdering(t *testing.T) {
	t.Parallel()

	contrib := make([]float64, features.Count())
	contrib[2] = -0.4
	contrib[5] = 0.4 // exact |tie| with index 2, schema order must win
	contrib[0] = 0.1
	contrib[9] = -0.05
	a := &Attribution{Contributions: contrib}

	ranked := a.Ranked()
	require.Len(t, ranked, features.Count())

	cols := features.Columns()
	assert.Equal(t, cols[2], ranked[0].Feature, "tied magnitudes keep schema order")
	assert.Equal(t, cols[5], ranked[1].Feature)
	assert.Equal(t, cols[0], ranked[2].Feature)
	assert.Equal(t, cols[9], ranked[3].Feature)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t,
			math.Abs(ranked[i-1].Contribution), math.Abs(ranked[i].Contribution),
			"ranking must be descending by magnitude")
	}
}
