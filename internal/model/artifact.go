package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"affair-radar/internal/features"
)

// TrainingInfo records how the bundle was produced, for reporting and the
// model info endpoint. Cross-validation figures are filled in by the
// training pipeline.
type TrainingInfo struct {
	Rows          int            `json:"rows"`
	Positives     int            `json:"positives"`
	Negatives     int            `json:"negatives"`
	DroppedLabels int            `json:"dropped_labels"`
	SourceCounts  map[string]int `json:"source_counts,omitempty"`
	AUCMean       float64        `json:"auc_mean"`
	AUCStd        float64        `json:"auc_std"`
	F1Mean        float64        `json:"f1_mean"`
	F1Std         float64        `json:"f1_std"`
}

// Bundle is the single artifact a training run produces and the serving
// process loads: schema, imputation model, forest, and provenance. Written
// once, then read-only.
type Bundle struct {
	Version   string       `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Schema    []string     `json:"schema"`
	Imputer   *Imputer     `json:"imputer"`
	Forest    *Forest      `json:"forest"`
	Training  TrainingInfo `json:"training"`
}

// NewBundle stamps a bundle with a timestamp version.
func NewBundle(imputer *Imputer, forest *Forest, info TrainingInfo) *Bundle {
	now := time.Now().UTC()
	return &Bundle{
		Version:   now.Format("20060102-150405"),
		CreatedAt: now,
		Schema:    features.Columns(),
		Imputer:   imputer,
		Forest:    forest,
		Training:  info,
	}
}

// Save writes the bundle as indented JSON, creating parent directories.
func (b *Bundle) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// LoadBundle reads and validates an artifact. A missing file is a
// ModelNotFoundError; the serving path treats that as fatal.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ModelNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if err := b.check(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return &b, nil
}

// check guards the invariants the scoring path depends on. Attribution
// indices are schema positions, so the stored schema must match the one
// compiled into this binary exactly.
func (b *Bundle) check() error {
	cols := features.Columns()
	if len(b.Schema) != len(cols) {
		return fmt.Errorf("schema width %d, want %d", len(b.Schema), len(cols))
	}
	for i, c := range cols {
		if b.Schema[i] != c {
			return fmt.Errorf("schema position %d is %s, want %s", i, b.Schema[i], c)
		}
	}
	if b.Imputer == nil || len(b.Imputer.Medians) != len(cols) {
		return fmt.Errorf("imputer missing or wrong width")
	}
	if b.Forest == nil || len(b.Forest.Trees) == 0 {
		return fmt.Errorf("forest missing or empty")
	}
	return nil
}

// Loader publishes a bundle through a one-time guarded load: the first Get
// performs the read, every later Get reuses the result, including a failed
// one.
type Loader struct {
	path   string
	once   sync.Once
	bundle *Bundle
	err    error
}

// NewLoader prepares a loader for path without touching the file.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Get returns the loaded bundle, loading it on first use.
func (l *Loader) Get() (*Bundle, error) {
	l.once.Do(func() {
		l.bundle, l.err = LoadBundle(l.path)
	})
	return l.bundle, l.err
}
