package model

import (
	"math"
	"sort"

	"affair-radar/internal/features"
)

// Attribution is an exact additive decomposition of the ensemble output for
// one vector: Output = BaseValue + sum of Contributions, by construction.
// Contributions are indexed by schema position and attribute the positive
// class.
type Attribution struct {
	BaseValue     float64
	Output        float64
	Contributions []float64
}

// Attribute decomposes the ensemble output for x. Walking each tree from
// the root, a node whose split feature is known moves the running
// expectation from the node's distribution to the traversed child's, and
// that difference is credited to the feature. A node whose split feature is
// missing splits the walk into both children weighted by cover and credits
// nothing, so unknown features contribute exactly zero and an all-missing
// vector reproduces the population baseline.
func (f *Forest) Attribute(x features.Vector) *Attribution {
	contrib := make([]float64, features.Count())
	var base float64
	for i := range f.Trees {
		t := &f.Trees[i]
		base += t.Nodes[0].Value[1]
		t.attribute(x, 0, 1, contrib)
	}

	n := float64(len(f.Trees))
	base /= n
	out := base
	for i := range contrib {
		contrib[i] /= n
		out += contrib[i]
	}

	return &Attribution{BaseValue: base, Output: out, Contributions: contrib}
}

// attribute accumulates path contributions for one tree. w is the cover
// weight of the current walk branch; it only drops below 1 after passing a
// node whose feature is missing.
func (t *Tree) attribute(x features.Vector, i int, w float64, contrib []float64) {
	n := &t.Nodes[i]
	if n.Leaf() {
		return
	}
	if xv := x[n.Feature]; !math.IsNaN(xv) {
		next := n.Left
		if xv > n.Threshold {
			next = n.Right
		}
		contrib[n.Feature] += w * (t.Nodes[next].Value[1] - n.Value[1])
		t.attribute(x, next, w, contrib)
		return
	}
	l := float64(t.Nodes[n.Left].Samples)
	r := float64(t.Nodes[n.Right].Samples)
	t.attribute(x, n.Left, w*l/(l+r), contrib)
	t.attribute(x, n.Right, w*r/(l+r), contrib)
}

// Factor pairs a schema feature with its signed contribution. Label is the
// display name, carried so clients render explanations without a schema map.
type Factor struct {
	Feature      string  `json:"feature"`
	Label        string  `json:"label"`
	Contribution float64 `json:"contribution"`
}

// Ranked returns all factors ordered by descending absolute contribution.
// Exact ties keep schema order.
func (a *Attribution) Ranked() []Factor {
	cols := features.Columns()
	out := make([]Factor, len(a.Contributions))
	for i, c := range a.Contributions {
		out[i] = Factor{Feature: cols[i], Label: features.DisplayName(cols[i]), Contribution: c}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Contribution) > math.Abs(out[j].Contribution)
	})
	return out
}
