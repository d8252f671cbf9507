package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// OSF project nodes hosting the study materials.
const (
	osfNodeSelterman = "kd9rt"
	osfNodeReinhardt = "qf79t"
)

// Fair's affairs dataset as published with statsmodels.
const fairCSVURL = "https://raw.githubusercontent.com/statsmodels/statsmodels/main/statsmodels/datasets/fair/fair.csv"

// Fetcher downloads study datasets. OSF-hosted studies are resolved
// through the OSF storage listing; the first CSV file in the project is
// taken as the data file.
type Fetcher struct {
	osfBase string
	fairURL string
	rest    *resty.Client
}

// NewFetcher builds a fetcher against the given OSF API base URL.
func NewFetcher(osfBase string, timeout time.Duration) *Fetcher {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(30 * time.Second) // default fallback
	}
	return &Fetcher{
		osfBase: strings.TrimSuffix(osfBase, "/"),
		fairURL: fairCSVURL,
		rest:    r,
	}
}

// WithRetries makes failed downloads retry up to n times before giving up.
func (f *Fetcher) WithRetries(n int) *Fetcher {
	if n > 0 {
		f.rest.SetRetryCount(n)
		f.rest.SetRetryWaitTime(2 * time.Second)
	}
	return f
}

// Fair downloads and harmonizes Fair (1978).
func (f *Fetcher) Fair(ctx context.Context) ([]Row, error) {
	records, err := f.downloadCSV(ctx, f.fairURL)
	if err != nil {
		return nil, fmt.Errorf("fair: %w", err)
	}
	rows := make([]Row, len(records))
	for i, raw := range records {
		rows[i] = HarmonizeFair(raw)
	}
	return rows, nil
}

// Selterman downloads and harmonizes Vowels, Vowels & Mark (2022) from
// its OSF project.
func (f *Fetcher) Selterman(ctx context.Context) ([]Row, error) {
	rows, err := f.fetchOSF(ctx, osfNodeSelterman, HarmonizeSelterman)
	if err != nil {
		return nil, fmt.Errorf("selterman: %w", err)
	}
	return rows, nil
}

// Reinhardt downloads and harmonizes Reinhardt & Reinhard (2023) from its
// OSF project.
func (f *Fetcher) Reinhardt(ctx context.Context) ([]Row, error) {
	rows, err := f.fetchOSF(ctx, osfNodeReinhardt, HarmonizeReinhardt)
	if err != nil {
		return nil, fmt.Errorf("reinhardt: %w", err)
	}
	return rows, nil
}

func (f *Fetcher) fetchOSF(ctx context.Context, node string, harmonize func(map[string]float64) Row) ([]Row, error) {
	name, url, err := f.firstCSV(ctx, node)
	if err != nil {
		return nil, err
	}
	log.Info().Str("node", node).Str("file", name).Msg("found OSF data file")

	records, err := f.downloadCSV(ctx, url)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(records))
	for i, raw := range records {
		rows[i] = harmonize(raw)
	}
	return rows, nil
}

type osfListing struct {
	Data []struct {
		Attributes struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"attributes"`
		Links struct {
			Download string `json:"download"`
		} `json:"links"`
	} `json:"data"`
}

// firstCSV lists a project's storage and returns the first CSV file.
func (f *Fetcher) firstCSV(ctx context.Context, node string) (name, url string, err error) {
	listing := &osfListing{}
	resp, err := f.rest.R().
		SetContext(ctx).
		SetResult(listing).
		Get(fmt.Sprintf("%s/nodes/%s/files/osfstorage/", f.osfBase, node))
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", "", fmt.Errorf("API error: status %d", resp.StatusCode())
	}

	for _, item := range listing.Data {
		if item.Attributes.Kind == "file" && strings.HasSuffix(item.Attributes.Name, ".csv") {
			return item.Attributes.Name, item.Links.Download, nil
		}
	}
	return "", "", fmt.Errorf("no CSV file in OSF node %s", node)
}

// downloadCSV fetches a CSV file and parses its numeric cells. Cells that
// do not parse as numbers are treated as absent.
func (f *Fetcher) downloadCSV(ctx context.Context, url string) ([]map[string]float64, error) {
	resp, err := f.rest.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode())
	}

	return parseNumericCSV(bytes.NewReader(resp.Body()))
}

func parseNumericCSV(r io.Reader) ([]map[string]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var records []map[string]float64
	for {
		rec, err := reader.Read()
		if err != nil {
			break // EOF or malformed tail
		}

		raw := make(map[string]float64, len(header))
		for i, col := range header {
			if i >= len(rec) {
				break
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err == nil {
				raw[col] = v
			}
		}
		records = append(records, raw)
	}
	return records, nil
}
