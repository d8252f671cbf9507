package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"affair-radar/internal/features"
)

// LoadCSV reads harmonized rows from a CSV file. The header names feature
// columns plus the optional target and source columns; cells that are
// empty or unparsable are treated as absent. Unknown columns are ignored.
func LoadCSV(path, defaultSource string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	indices := make(map[string]int)
	for i, col := range header {
		indices[col] = i
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err != nil {
			break // EOF or malformed tail
		}

		row := Row{Source: defaultSource, Features: make(map[string]float64)}

		for _, name := range features.Columns() {
			idx, ok := indices[name]
			if !ok || idx >= len(record) {
				continue
			}
			if v, err := strconv.ParseFloat(record[idx], 64); err == nil {
				row.Features[name] = v
			}
		}

		if idx, ok := indices[features.Target]; ok && idx < len(record) {
			if v, err := strconv.ParseFloat(record[idx], 64); err == nil {
				row.Label = label(int(v))
			}
		}
		if idx, ok := indices["source"]; ok && idx < len(record) && record[idx] != "" {
			row.Source = record[idx]
		}

		rows = append(rows, row)
	}

	log.Info().
		Str("file", path).
		Int("rows", len(rows)).
		Msg("CSV data loaded")

	return rows, nil
}

// WriteCSV exports rows with the full schema header plus source and target
// columns. Absent features become empty cells.
func WriteCSV(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := append([]string{"source"}, features.Columns()...)
	header = append(header, features.Target)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	// Stable output: group rows by source name.
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Source < sorted[j].Source })

	for _, r := range sorted {
		record := make([]string, 0, len(header))
		record = append(record, r.Source)
		for _, name := range features.Columns() {
			if v, ok := r.Features[name]; ok {
				record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		if r.Label != nil {
			record = append(record, strconv.Itoa(*r.Label))
		} else {
			record = append(record, "")
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
