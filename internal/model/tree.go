package model

import (
	"math"
	"math/rand"
	"sort"

	"affair-radar/internal/features"
)

// Node is one tree node, arena-allocated in Tree.Nodes with children
// referenced by index. Feature is -1 for leaves. Value is the class
// distribution of the training rows that reached the node; internal node
// values are the cover-weighted mean of their children, which is what makes
// the path attribution telescope exactly. Samples is the cover, counting
// bootstrap multiplicity.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Samples   int       `json:"samples"`
	Value     []float64 `json:"value"`
}

// Leaf reports whether the node has no children.
func (n *Node) Leaf() bool { return n.Feature < 0 }

// Tree is one grown decision tree. Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Proba returns the class distribution for x. A missing entry at a split
// descends both children weighted by cover, so the result stays a convex
// combination of leaf distributions for any missingness pattern.
func (t *Tree) Proba(x features.Vector) []float64 {
	out := make([]float64, len(t.Nodes[0].Value))
	t.expected(x, 0, 1, out)
	return out
}

func (t *Tree) expected(x features.Vector, i int, w float64, out []float64) {
	n := &t.Nodes[i]
	if n.Leaf() {
		for c := range out {
			out[c] += w * n.Value[c]
		}
		return
	}
	if xv := x[n.Feature]; !math.IsNaN(xv) {
		if xv <= n.Threshold {
			t.expected(x, n.Left, w, out)
		} else {
			t.expected(x, n.Right, w, out)
		}
		return
	}
	l := float64(t.Nodes[n.Left].Samples)
	r := float64(t.Nodes[n.Right].Samples)
	t.expected(x, n.Left, w*l/(l+r), out)
	t.expected(x, n.Right, w*r/(l+r), out)
}

// treeBuilder grows one tree over a bootstrap sample. All randomness comes
// from rng, owned by this tree alone, so growth is reproducible regardless
// of how trees are scheduled.
type treeBuilder struct {
	rows   []features.Vector
	labels []int
	cfg    Config
	rng    *rand.Rand
	weight [2]float64 // class weights applied to leaf distributions only

	nodes      []Node
	importance []float64 // impurity reduction per feature
	rootN      float64
}

type splitCandidate struct {
	feature   int
	threshold float64
	reduction float64
	ok        bool
}

// better orders candidates by reduction, then lowest feature index, then
// lowest threshold, which keeps tie-breaking reproducible.
func (s splitCandidate) better(o splitCandidate) bool {
	if !o.ok {
		return s.ok
	}
	if s.reduction != o.reduction {
		return s.reduction > o.reduction
	}
	if s.feature != o.feature {
		return s.feature < o.feature
	}
	return s.threshold < o.threshold
}

func growTree(rows []features.Vector, labels []int, idx []int, cfg Config, rng *rand.Rand, weight [2]float64) (Tree, []float64) {
	b := &treeBuilder{
		rows:       rows,
		labels:     labels,
		cfg:        cfg,
		rng:        rng,
		weight:     weight,
		importance: make([]float64, features.Count()),
		rootN:      float64(len(idx)),
	}
	b.grow(idx, 0)
	normalize(b.importance)
	return Tree{Nodes: b.nodes}, b.importance
}

// grow appends the subtree for idx and returns its root index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	c0, c1 := b.count(idx)

	if depth >= b.cfg.MaxDepth || len(idx) < b.cfg.MinSamplesSplit || c0 == 0 || c1 == 0 {
		return b.leaf(c0, c1)
	}

	sp := b.bestSplit(idx, c0, c1)
	if !sp.ok {
		return b.leaf(c0, c1)
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.rows[i][sp.feature] <= sp.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	b.importance[sp.feature] += float64(len(idx)) / b.rootN * sp.reduction

	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: sp.feature, Threshold: sp.threshold, Samples: len(idx)})
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)

	n := &b.nodes[self]
	n.Left = l
	n.Right = r
	n.Value = coverMean(&b.nodes[l], &b.nodes[r])
	return self
}

func (b *treeBuilder) leaf(c0, c1 int) int {
	i := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Feature: -1,
		Samples: c0 + c1,
		Value:   b.dist(c0, c1),
	})
	return i
}

// bestSplit scans a random feature subset for the threshold with the
// largest Gini reduction. Candidate features are visited in ascending index
// order and thresholds in ascending value order.
func (b *treeBuilder) bestSplit(idx []int, c0, c1 int) splitCandidate {
	n := len(idx)
	parent := gini(c0, c1)

	cand := b.sampleFeatures()
	pairs := make([]struct {
		v float64
		y int
	}, n)

	var best splitCandidate
	for _, f := range cand {
		for j, i := range idx {
			pairs[j].v = b.rows[i][f]
			pairs[j].y = b.labels[i]
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })
		if pairs[0].v == pairs[n-1].v {
			continue
		}

		l0, l1 := 0, 0
		for s := 1; s < n; s++ {
			if pairs[s-1].y == 0 {
				l0++
			} else {
				l1++
			}
			if pairs[s].v == pairs[s-1].v {
				continue
			}
			if s < b.cfg.MinSamplesLeaf || n-s < b.cfg.MinSamplesLeaf {
				continue
			}
			childAvg := (float64(s)*gini(l0, l1) + float64(n-s)*gini(c0-l0, c1-l1)) / float64(n)
			sp := splitCandidate{
				feature:   f,
				threshold: (pairs[s-1].v + pairs[s].v) / 2,
				reduction: parent - childAvg,
				ok:        true,
			}
			if sp.reduction > 0 && sp.better(best) {
				best = sp
			}
		}
	}
	return best
}

// sampleFeatures draws MaxFeatures distinct feature indices via a partial
// Fisher-Yates shuffle, returned in ascending order.
func (b *treeBuilder) sampleFeatures() []int {
	total := features.Count()
	k := b.cfg.MaxFeatures
	if k <= 0 || k > total {
		k = total
	}
	all := make([]int, total)
	for i := range all {
		all[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + b.rng.Intn(total-i)
		all[i], all[j] = all[j], all[i]
	}
	sel := all[:k]
	sort.Ints(sel)
	return sel
}

func (b *treeBuilder) count(idx []int) (c0, c1 int) {
	for _, i := range idx {
		if b.labels[i] == 0 {
			c0++
		} else {
			c1++
		}
	}
	return
}

// dist converts class counts into a probability distribution. Class weights
// apply here and nowhere else; split selection sees raw counts.
func (b *treeBuilder) dist(c0, c1 int) []float64 {
	w0 := float64(c0) * b.weight[0]
	w1 := float64(c1) * b.weight[1]
	return []float64{w0 / (w0 + w1), w1 / (w0 + w1)}
}

func coverMean(l, r *Node) []float64 {
	nl := float64(l.Samples)
	nr := float64(r.Samples)
	out := make([]float64, len(l.Value))
	for c := range out {
		out[c] = (nl*l.Value[c] + nr*r.Value[c]) / (nl + nr)
	}
	return out
}

func gini(c0, c1 int) float64 {
	n := float64(c0 + c1)
	if n == 0 {
		return 0
	}
	p0 := float64(c0) / n
	p1 := float64(c1) / n
	return 1 - p0*p0 - p1*p1
}

func normalize(xs []float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	if sum <= 0 {
		return
	}
	for i := range xs {
		xs[i] /= sum
	}
}
