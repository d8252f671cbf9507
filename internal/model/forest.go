package model

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"affair-radar/internal/common"
	"affair-radar/internal/features"
)

// Config holds the ensemble hyperparameters. MaxFeatures 0 means the square
// root of the schema width.
type Config struct {
	Trees           int   `json:"trees" yaml:"trees"`
	MaxDepth        int   `json:"max_depth" yaml:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split" yaml:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf" yaml:"min_samples_leaf"`
	MaxFeatures     int   `json:"max_features" yaml:"max_features"`
	Seed            int64 `json:"seed" yaml:"seed"`
	Balanced        bool  `json:"balanced" yaml:"balanced"`
}

// DefaultConfig mirrors the hyperparameters the production model ships with.
func DefaultConfig() Config {
	return Config{
		Trees:           common.DefaultTrees,
		MaxDepth:        common.DefaultMaxDepth,
		MinSamplesSplit: common.DefaultMinSamplesSplit,
		MinSamplesLeaf:  common.DefaultMinSamplesLeaf,
		MaxFeatures:     0,
		Seed:            common.DefaultSeed,
		Balanced:        true,
	}
}

func (c Config) validate() error {
	if c.Trees < common.MinTrees || c.Trees > common.MaxTrees {
		return fmt.Errorf("trees must be in [%d, %d], got %d", common.MinTrees, common.MaxTrees, c.Trees)
	}
	if c.MaxDepth < common.MinDepth || c.MaxDepth > common.MaxDepth {
		return fmt.Errorf("max_depth must be in [%d, %d], got %d", common.MinDepth, common.MaxDepth, c.MaxDepth)
	}
	if c.MinSamplesSplit < 2 {
		return fmt.Errorf("min_samples_split must be >= 2, got %d", c.MinSamplesSplit)
	}
	if c.MinSamplesLeaf < 1 {
		return fmt.Errorf("min_samples_leaf must be >= 1, got %d", c.MinSamplesLeaf)
	}
	if c.MaxFeatures < 0 || c.MaxFeatures > features.Count() {
		return fmt.Errorf("max_features must be in [0, %d], got %d", features.Count(), c.MaxFeatures)
	}
	return nil
}

// normalized resolves defaulted fields.
func (c Config) normalized() Config {
	if c.MaxFeatures == 0 {
		c.MaxFeatures = int(math.Sqrt(float64(features.Count())))
	}
	return c
}

// Forest is a trained bagged ensemble. Immutable after Train; safe for
// concurrent prediction and attribution.
type Forest struct {
	Schema       []string   `json:"schema"`
	Trees        []Tree     `json:"trees"`
	Config       Config     `json:"config"`
	ClassWeights [2]float64 `json:"class_weights"`
	Importance   []float64  `json:"importance"`
}

// Train grows cfg.Trees trees, each on its own bootstrap sample drawn from
// a generator seeded seed+i, one goroutine per tree. Two runs with the same
// rows and config produce identical forests.
func Train(vecs []features.Vector, labels []int, cfg Config) (*Forest, error) {
	if len(vecs) == 0 {
		return nil, fmt.Errorf("train: no rows")
	}
	if len(vecs) != len(labels) {
		return nil, fmt.Errorf("train: %d rows but %d labels", len(vecs), len(labels))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	cfg = cfg.normalized()

	var n0, n1 int
	for _, y := range labels {
		switch y {
		case 0:
			n0++
		case 1:
			n1++
		default:
			return nil, fmt.Errorf("train: label %d is not binary", y)
		}
	}
	if n0 == 0 || n1 == 0 {
		return nil, fmt.Errorf("train: need both classes, got %d negative and %d positive", n0, n1)
	}

	// Inverse class frequency, computed once over the full training set.
	weight := [2]float64{1, 1}
	if cfg.Balanced {
		n := float64(len(labels))
		weight[0] = n / (2 * float64(n0))
		weight[1] = n / (2 * float64(n1))
	}

	f := &Forest{
		Schema:       features.Columns(),
		Trees:        make([]Tree, cfg.Trees),
		Config:       cfg,
		ClassWeights: weight,
	}
	perTree := make([][]float64, cfg.Trees)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Trees; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			idx := make([]int, len(vecs))
			for j := range idx {
				idx[j] = rng.Intn(len(vecs))
			}
			f.Trees[i], perTree[i] = growTree(vecs, labels, idx, cfg, rng, weight)
		}(i)
	}
	wg.Wait()

	f.Importance = make([]float64, features.Count())
	for _, imp := range perTree {
		for j, x := range imp {
			f.Importance[j] += x
		}
	}
	for j := range f.Importance {
		f.Importance[j] /= float64(cfg.Trees)
	}

	return f, nil
}

// PredictProba returns the mean class distribution across all trees.
// Missing entries are handled per tree by cover-weighted descent.
func (f *Forest) PredictProba(x features.Vector) []float64 {
	out := make([]float64, len(f.Trees[0].Nodes[0].Value))
	for i := range f.Trees {
		p := f.Trees[i].Proba(x)
		for c := range out {
			out[c] += p[c]
		}
	}
	for c := range out {
		out[c] /= float64(len(f.Trees))
	}
	return out
}

// BaseValue is the ensemble's population-average positive-class
// probability, the mean of the root distributions.
func (f *Forest) BaseValue() float64 {
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].Nodes[0].Value[1]
	}
	return sum / float64(len(f.Trees))
}
