package storage

import (
	"fmt"

	"affair-radar/internal/dataset"
)

// ExportCSV writes every stored row to a single CSV at path, reading back
// what ReplaceSource persisted. Sources appear in key order, so the output
// is stable across runs.
func (s *Store) ExportCSV(path string) (int, error) {
	rows, err := s.AllRows()
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}
	if err := dataset.WriteCSV(path, rows); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(rows), nil
}
