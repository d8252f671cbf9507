package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"affair-radar/internal/cfg"
	"affair-radar/internal/dataset"
	"affair-radar/internal/metrics"
	"affair-radar/internal/pipeline"
	"affair-radar/internal/storage"
)

func main() {
	// Parse command line arguments
	var (
		dataPath     = flag.String("data", "", "Training data: CSV file, directory of CSVs, or store directory (overrides config)")
		artifactPath = flag.String("artifact", "", "Output path for the model artifact (overrides config)")
		reportPath   = flag.String("report", "", "Output path for the training report (overrides config)")
		trees        = flag.Int("trees", 0, "Number of trees (overrides config)")
		seed         = flag.Int64("seed", 0, "Training seed (overrides config)")
		folds        = flag.Int("folds", 0, "Cross-validation folds (overrides config)")
		logLevel     = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	// Setup logging
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load() // best effort

	// Load configuration
	config, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Override config with command line arguments
	if *dataPath != "" {
		config.DataPath = *dataPath
	}
	if *artifactPath != "" {
		config.ArtifactPath = *artifactPath
	}
	if *reportPath != "" {
		config.ReportPath = *reportPath
	}
	if *trees > 0 {
		config.Trees = *trees
	}
	if *seed != 0 {
		config.Seed = *seed
	}
	if *folds > 0 {
		config.Folds = *folds
	}

	fmt.Println("=== Training Configuration ===")
	fmt.Printf("Data Path: %s\n", config.DataPath)
	fmt.Printf("Artifact Path: %s\n", config.ArtifactPath)
	fmt.Printf("Trees: %d  Max Depth: %d  Seed: %d\n", config.Trees, config.MaxDepth, config.Seed)
	fmt.Printf("Folds: %d\n", config.Folds)
	fmt.Println("==============================")

	rows, err := loadRows(config.DataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load training data")
	}

	result, err := pipeline.Run(context.Background(), rows, pipeline.Options{
		Config:        config.ModelConfig(),
		Folds:         config.Folds,
		TopImportance: config.TopK,
		ArtifactPath:  config.ArtifactPath,
		ReportPath:    config.ReportPath,
		Recorder:      metrics.Noop(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Training failed")
	}

	report := result.Report
	fmt.Println("=== Cross-Validation ===")
	fmt.Printf("AUC: %.3f (+/- %.3f)\n", report.AUCMean, report.AUCStd)
	fmt.Printf("F1:  %.3f (+/- %.3f)\n", report.F1Mean, report.F1Std)
	fmt.Println("=== Feature Importance ===")
	for i, fi := range result.Importance {
		fmt.Printf("%2d. %-22s %.4f\n", i+1, fi.Feature, fi.Importance)
	}

	log.Info().
		Str("artifact", config.ArtifactPath).
		Str("version", result.Bundle.Version).
		Dur("duration", result.Duration).
		Msg("Training completed successfully")
}

// loadRows reads training rows from a CSV file, a directory of CSVs, or a
// row store directory. A directory holding the store database wins over
// loose CSVs in the same place.
func loadRows(path string) ([]dataset.Row, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if !info.IsDir() {
		if !strings.HasSuffix(path, ".csv") {
			return nil, fmt.Errorf("cannot determine data format for: %s", path)
		}
		return dataset.LoadCSV(path, sourceFromFilename(path))
	}

	if _, err := os.Stat(filepath.Join(path, storage.FileName)); err == nil {
		store, err := storage.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()
		return store.AllRows()
	}

	matches, err := filepath.Glob(filepath.Join(path, "*.csv"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("no training data found in %s", path)
	}

	var rows []dataset.Row
	for _, m := range matches {
		batch, err := dataset.LoadCSV(m, sourceFromFilename(m))
		if err != nil {
			return nil, err
		}
		rows = append(rows, batch...)
	}
	return rows, nil
}

// sourceFromFilename tags rows from a CSV without a source column by the
// file's base name.
func sourceFromFilename(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".csv")
}
