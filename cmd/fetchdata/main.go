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
	"golang.org/x/sync/errgroup"

	"affair-radar/internal/cfg"
	"affair-radar/internal/common"
	"affair-radar/internal/dataset"
	"affair-radar/internal/metrics"
	"affair-radar/internal/storage"
)

// fetchResult carries one harmonized source out of the fetch group.
type fetchResult struct {
	source string
	rows   []dataset.Row
	origin string
}

func main() {
	var (
		dataPath = flag.String("data", "", "Data directory for the store (defaults to config)")
		sources  = flag.String("sources", "all", "Comma-separated sources to fetch, or 'all'")
		csvOut   = flag.String("csv", "", "Optional path to export all harmonized rows as one CSV")
		offline  = flag.Bool("offline", false, "Skip downloads and generate synthetic rows only")
		seed     = flag.Int64("seed", common.DefaultSeed, "Seed for synthetic generation")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load() // best effort

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *dataPath != "" {
		c.DataPath = *dataPath
	}

	wanted, err := parseSources(*sources)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid source list")
	}

	if err := os.MkdirAll(c.DataPath, 0o755); err != nil {
		log.Fatal().Err(err).Str("path", c.DataPath).Msg("Failed to create data directory")
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer store.Close()

	fmt.Println("=== Data Acquisition ===")
	fmt.Printf("Store:   %s\n", filepath.Join(c.DataPath, storage.FileName))
	fmt.Printf("Sources: %s\n", strings.Join(wanted, ", "))
	if *offline {
		fmt.Println("Mode:    offline (synthetic only)")
	}
	fmt.Println()

	rec := metrics.Noop()
	fetcher := dataset.NewFetcher(c.OSFBaseURL, c.FetchTimeout).WithRetries(c.FetchRetries)

	results := make([]fetchResult, len(wanted))
	g, gctx := errgroup.WithContext(context.Background())
	for i, source := range wanted {
		i, source := i, source // per-iteration copies; go directive predates Go 1.22 loopvar scoping
		g.Go(func() error {
			res, err := fetchSource(gctx, fetcher, source, *offline, *seed, rec)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Data acquisition failed")
	}

	// Bolt allows one writer at a time, so persist after the group is done.
	counts := make(map[string]int, len(results))
	for _, res := range results {
		if err := store.ReplaceSource(res.source, res.rows, res.origin); err != nil {
			log.Fatal().Err(err).Str("source", res.source).Msg("Failed to persist source")
		}
		counts[res.source] = len(res.rows)
	}
	rec.UpdateSourceRows(counts)

	if *csvOut != "" {
		n, err := store.ExportCSV(*csvOut)
		if err != nil {
			log.Fatal().Err(err).Str("path", *csvOut).Msg("Failed to export CSV")
		}
		log.Info().Str("path", *csvOut).Int("rows", n).Msg("exported combined CSV")
	}

	printSummary(results)
}

// fetchSource obtains one source, falling back to the synthetic generator
// when the download fails or offline mode is set. Fallback sizes match the
// published studies so a synthetic store trains at realistic scale.
func fetchSource(ctx context.Context, f *dataset.Fetcher, source string, offline bool, seed int64, rec metrics.Recorder) (fetchResult, error) {
	var (
		download  func(context.Context) ([]dataset.Row, error)
		synthetic func() []dataset.Row
	)

	switch source {
	case common.SourceFair:
		download = f.Fair
		synthetic = func() []dataset.Row { return dataset.SyntheticFair(6366, seed) }
	case common.SourceGSS:
		// No machine-readable public export; always generated.
		synthetic = func() []dataset.Row { return dataset.SyntheticGSS(10000, seed) }
	case common.SourceSelterman:
		download = f.Selterman
		synthetic = func() []dataset.Row { return dataset.SyntheticSelterman(1295, seed) }
	case common.SourceReinhardt:
		download = f.Reinhardt
		synthetic = func() []dataset.Row { return dataset.SyntheticReinhardt(5677, seed) }
	default:
		return fetchResult{}, fmt.Errorf("unknown source %q", source)
	}

	if !offline && download != nil {
		rows, err := download(ctx)
		if err == nil {
			rec.FetchInc(source)
			log.Info().Str("source", source).Int("rows", len(rows)).Msg("downloaded source")
			return fetchResult{source: source, rows: rows, origin: storage.OriginDownload}, nil
		}
		rec.FetchFailureInc(source)
		log.Warn().Err(err).Str("source", source).Msg("download failed, generating synthetic rows")
	}

	rows := synthetic()
	rec.FetchInc(source)
	log.Info().Str("source", source).Int("rows", len(rows)).Msg("generated synthetic source")
	return fetchResult{source: source, rows: rows, origin: storage.OriginSynthetic}, nil
}

func parseSources(s string) ([]string, error) {
	if s == "" || s == "all" {
		return []string{common.SourceFair, common.SourceGSS, common.SourceSelterman, common.SourceReinhardt}, nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		switch name {
		case common.SourceFair, common.SourceGSS, common.SourceSelterman, common.SourceReinhardt:
			out = append(out, name)
		case "":
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sources selected")
	}
	return out, nil
}

func printSummary(results []fetchResult) {
	fmt.Println()
	fmt.Println("=== Acquisition Summary ===")
	total := 0
	for _, res := range results {
		labeled := 0
		for _, r := range res.rows {
			if r.Labeled() {
				labeled++
			}
		}
		fmt.Printf("%-16s %6d rows  %6d labeled  [%s]\n", res.source, len(res.rows), labeled, res.origin)
		total += len(res.rows)
	}
	fmt.Printf("%-16s %6d rows\n", "total", total)
}
