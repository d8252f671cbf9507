package eval

import (
	"fmt"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// AUC computes the area under the ROC curve for predicted positive-class
// scores against binary labels, by trapezoidal integration. Both classes
// must be present: a one-class slice has no ranking to measure.
func AUC(scores []float64, labels []int) (float64, error) {
	if len(scores) != len(labels) {
		return 0, fmt.Errorf("scores %d and labels %d differ", len(scores), len(labels))
	}

	y := make([]float64, len(scores))
	classes := make([]bool, len(labels))
	var pos int
	for i, s := range scores {
		y[i] = s
		classes[i] = labels[i] == 1
		if classes[i] {
			pos++
		}
	}
	if pos == 0 || pos == len(labels) {
		return 0, fmt.Errorf("single-class labels, cannot rank")
	}

	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// F1 scores hard predictions taken at threshold against binary labels.
// Degenerate cases with no predicted or no actual positives score zero.
func F1(scores []float64, labels []int, threshold float64) float64 {
	var tp, fp, fn int
	for i, s := range scores {
		predicted := s >= threshold
		actual := labels[i] == 1
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && actual:
			fn++
		}
	}

	if tp == 0 {
		return 0
	}
	precision := float64(tp) / float64(tp+fp)
	recall := float64(tp) / float64(tp+fn)
	return 2 * precision * recall / (precision + recall)
}
