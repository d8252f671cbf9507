package eval

import (
	"fmt"
	"math/rand"

	"affair-radar/internal/common"
)

// Split partitions row indices 0..n-1 into k held-out folds after a seeded
// shuffle. Fold sizes differ by at most one row, and the same seed always
// yields the same partition.
func Split(n, k int, seed int64) ([][]int, error) {
	if k < common.MinFolds || k > common.MaxFolds {
		return nil, fmt.Errorf("folds %d out of range [%d, %d]", k, common.MinFolds, common.MaxFolds)
	}
	if n < k {
		return nil, fmt.Errorf("%d rows cannot fill %d folds", n, k)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	folds := make([][]int, k)
	base := n / k
	extra := n % k
	start := 0
	for i := 0; i < k; i++ {
		size := base
		if i < extra {
			size++
		}
		folds[i] = perm[start : start+size]
		start += size
	}
	return folds, nil
}

// complement returns all indices in 0..n-1 not present in held.
func complement(n int, held []int) []int {
	in := make([]bool, n)
	for _, i := range held {
		in[i] = true
	}
	out := make([]int, 0, n-len(held))
	for i := 0; i < n; i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}
