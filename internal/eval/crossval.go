package eval

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"affair-radar/internal/features"
	"affair-radar/internal/model"
)

// FoldResult holds the held-out metrics of one fold.
type FoldResult struct {
	Fold      int     `json:"fold"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
	AUC       float64 `json:"auc"`
	F1        float64 `json:"f1"`
}

// Report is a full cross-validation outcome.
type Report struct {
	Folds   []FoldResult `json:"folds"`
	AUCMean float64      `json:"auc_mean"`
	AUCStd  float64      `json:"auc_std"`
	F1Mean  float64      `json:"f1_mean"`
	F1Std   float64      `json:"f1_std"`
}

// Classification threshold for the F1 summary.
const decisionThreshold = 0.5

// CrossValidate estimates out-of-sample AUC and F1 by k-fold validation.
// Rows are shuffled once with cfg.Seed, each fold trains a fresh ensemble
// with the same configuration on the remaining rows, and held-out rows are
// scored by that fold's ensemble only. Folds run concurrently; the result
// is deterministic for a given seed. Rows must already be imputed.
func CrossValidate(ctx context.Context, vecs []features.Vector, labels []int, cfg model.Config, folds int) (*Report, error) {
	if len(vecs) != len(labels) {
		return nil, fmt.Errorf("crossval: %d rows but %d labels", len(vecs), len(labels))
	}
	held, err := Split(len(vecs), folds, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("crossval: %w", err)
	}

	results := make([]FoldResult, folds)
	g, ctx := errgroup.WithContext(ctx)
	for i, test := range held {
		i, test := i, test // per-iteration copies; go directive predates Go 1.22 loopvar scoping
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := runFold(vecs, labels, test, cfg)
			if err != nil {
				return fmt.Errorf("fold %d: %w", i, err)
			}
			r.Fold = i
			results[i] = r

			log.Debug().
				Int("fold", i).
				Int("train_rows", r.TrainRows).
				Int("test_rows", r.TestRows).
				Float64("auc", r.AUC).
				Float64("f1", r.F1).
				Msg("fold evaluated")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	aucs := make([]float64, folds)
	f1s := make([]float64, folds)
	for i, r := range results {
		aucs[i] = r.AUC
		f1s[i] = r.F1
	}

	return &Report{
		Folds:   results,
		AUCMean: stat.Mean(aucs, nil),
		AUCStd:  stat.StdDev(aucs, nil),
		F1Mean:  stat.Mean(f1s, nil),
		F1Std:   stat.StdDev(f1s, nil),
	}, nil
}

func runFold(vecs []features.Vector, labels []int, test []int, cfg model.Config) (FoldResult, error) {
	train := complement(len(vecs), test)

	trainVecs := make([]features.Vector, len(train))
	trainLabels := make([]int, len(train))
	for j, idx := range train {
		trainVecs[j] = vecs[idx]
		trainLabels[j] = labels[idx]
	}

	f, err := model.Train(trainVecs, trainLabels, cfg)
	if err != nil {
		return FoldResult{}, err
	}

	scores := make([]float64, len(test))
	testLabels := make([]int, len(test))
	for j, idx := range test {
		scores[j] = f.PredictProba(vecs[idx])[1]
		testLabels[j] = labels[idx]
	}

	auc, err := AUC(scores, testLabels)
	if err != nil {
		return FoldResult{}, err
	}

	return FoldResult{
		TrainRows: len(train),
		TestRows:  len(test),
		AUC:       auc,
		F1:        F1(scores, testLabels, decisionThreshold),
	}, nil
}
