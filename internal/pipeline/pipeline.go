// Package pipeline runs a training pass end to end: fit the imputer over
// every row, drop and count unlabeled rows, cross-validate, train the final
// forest on all labeled data, and write the artifact bundle plus a JSON
// report.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"affair-radar/internal/dataset"
	"affair-radar/internal/eval"
	"affair-radar/internal/features"
	"affair-radar/internal/metrics"
	"affair-radar/internal/model"
)

// Options configures a training run. Empty paths skip the corresponding
// output file.
type Options struct {
	Config        model.Config
	Folds         int
	TopImportance int
	ArtifactPath  string
	ReportPath    string
	Recorder      metrics.Recorder
}

// Result is what a completed run produced.
type Result struct {
	Bundle     *model.Bundle
	Report     *eval.Report
	Importance []model.FeatureImportance
	Duration   time.Duration
}

// TrainingReport is the JSON document written next to the artifact,
// summarizing the run for dashboards and regression tracking.
type TrainingReport struct {
	Version         string                    `json:"version"`
	CreatedAt       time.Time                 `json:"created_at"`
	Rows            int                       `json:"rows"`
	Positives       int                       `json:"positives"`
	Negatives       int                       `json:"negatives"`
	DroppedLabels   int                       `json:"dropped_labels"`
	SourceCounts    map[string]int            `json:"source_counts"`
	CrossValidation *eval.Report              `json:"cross_validation"`
	Importance      []model.FeatureImportance `json:"importance"`
}

// Run executes the pipeline over rows. The imputer is fitted on every row,
// labeled or not, mirroring how the production model is prepared; training
// and evaluation then use the imputed matrix of labeled rows only.
func Run(ctx context.Context, rows []dataset.Row, opts Options) (*Result, error) {
	start := time.Now()

	rec := opts.Recorder
	if rec == nil {
		rec = metrics.Noop()
	}
	if opts.TopImportance <= 0 {
		opts.TopImportance = 10
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("pipeline: no training rows")
	}

	counts := dataset.SourceCounts(rows)
	log.Info().
		Int("rows", len(rows)).
		Interface("sources", counts).
		Msg("Training data loaded")

	allVecs := make([]features.Vector, len(rows))
	for i, r := range rows {
		allVecs[i] = r.Vector()
	}
	imputer, err := model.FitImputer(allVecs)
	if err != nil {
		return nil, fmt.Errorf("fit imputer: %w", err)
	}

	vecs, labels, dropped := dataset.Matrix(rows)
	if len(vecs) == 0 {
		return nil, fmt.Errorf("pipeline: no labeled rows")
	}
	X := imputer.TransformAll(vecs)

	var positives, negatives int
	for _, y := range labels {
		if y == 1 {
			positives++
		} else {
			negatives++
		}
	}
	log.Info().
		Int("samples", len(labels)).
		Int("positives", positives).
		Int("negatives", negatives).
		Int("dropped_labels", dropped).
		Msg("Training matrix prepared")

	report, err := eval.CrossValidate(ctx, X, labels, opts.Config, opts.Folds)
	if err != nil {
		return nil, fmt.Errorf("cross-validate: %w", err)
	}
	log.Info().
		Float64("auc_mean", report.AUCMean).
		Float64("auc_std", report.AUCStd).
		Float64("f1_mean", report.F1Mean).
		Float64("f1_std", report.F1Std).
		Msg("Cross-validation complete")

	forest, err := model.Train(X, labels, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("train forest: %w", err)
	}

	top := forest.TopImportance(opts.TopImportance)
	log.Info().
		Interface("top_features", top).
		Msg("Feature importance computed")

	info := model.TrainingInfo{
		Rows:          len(labels),
		Positives:     positives,
		Negatives:     negatives,
		DroppedLabels: dropped,
		SourceCounts:  counts,
		AUCMean:       report.AUCMean,
		AUCStd:        report.AUCStd,
		F1Mean:        report.F1Mean,
		F1Std:         report.F1Std,
	}
	bundle := model.NewBundle(imputer, forest, info)

	if opts.ArtifactPath != "" {
		if err := bundle.Save(opts.ArtifactPath); err != nil {
			return nil, err
		}
		log.Info().
			Str("path", opts.ArtifactPath).
			Str("version", bundle.Version).
			Msg("Artifact saved")
	}
	if opts.ReportPath != "" {
		tr := &TrainingReport{
			Version:         bundle.Version,
			CreatedAt:       bundle.CreatedAt,
			Rows:            info.Rows,
			Positives:       info.Positives,
			Negatives:       info.Negatives,
			DroppedLabels:   info.DroppedLabels,
			SourceCounts:    counts,
			CrossValidation: report,
			Importance:      top,
		}
		if err := writeReport(opts.ReportPath, tr); err != nil {
			return nil, err
		}
		log.Info().Str("path", opts.ReportPath).Msg("Training report saved")
	}

	elapsed := time.Since(start)
	rec.TrainingsInc()
	rec.TrainingDurationObserve(elapsed.Seconds())
	rec.TrainingAUCSet(report.AUCMean)
	rec.UpdateSourceRows(counts)

	return &Result{
		Bundle:     bundle,
		Report:     report,
		Importance: top,
		Duration:   elapsed,
	}, nil
}

func writeReport(path string, r *TrainingReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
