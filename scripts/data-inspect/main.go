package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"affair-radar/internal/dataset"
	"affair-radar/internal/features"
	"affair-radar/internal/storage"
)

func main() {
	var dataPath = flag.String("data", "./data", "Data directory path")
	var sample = flag.Int("sample", 3, "Sample rows to print per source")
	flag.Parse()

	fmt.Printf("Inspecting data in: %s\n", *dataPath)

	// Open storage
	store, err := storage.New(*dataPath)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	infos, err := store.Sources()
	if err != nil {
		log.Fatalf("Failed to list sources: %v", err)
	}
	if len(infos) == 0 {
		fmt.Println("Store is empty. Run fetchdata first.")
		return
	}

	fmt.Println("\nSources:")
	for _, info := range infos {
		fmt.Printf("  %-16s %6d rows  [%s]  fetched %s\n",
			info.Source, info.Rows, info.Origin, info.FetchedAt.Format("2006-01-02 15:04:05"))
	}

	total, labeled, positives := 0, 0, 0
	for _, info := range infos {
		rows, err := store.RowsBySource(info.Source)
		if err != nil {
			log.Fatalf("Failed to read source %s: %v", info.Source, err)
		}
		total += len(rows)
		for _, r := range rows {
			if r.Labeled() {
				labeled++
				if *r.Label == 1 {
					positives++
				}
			}
		}

		fmt.Printf("\nSample rows from %s:\n", info.Source)
		for i := 0; i < len(rows) && i < *sample; i++ {
			printRow(rows[i])
		}
	}

	if labeled == 0 {
		fmt.Printf("\nTotals: %d rows, none labeled\n", total)
		return
	}
	fmt.Printf("\nTotals: %d rows, %d labeled, %d positive (%.1f%% base rate)\n",
		total, labeled, positives, 100*float64(positives)/float64(labeled))
}

func printRow(r dataset.Row) {
	names := make([]string, 0, len(r.Features))
	for name := range r.Features {
		names = append(names, name)
	}
	sort.Strings(names)

	label := "unlabeled"
	if r.Labeled() {
		label = fmt.Sprintf("%s=%d", features.Target, *r.Label)
	}
	fmt.Printf("  %s:", label)
	for _, name := range names {
		fmt.Printf(" %s=%.2f", name, r.Features[name])
	}
	fmt.Println()
}
