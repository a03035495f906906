// Command genmock computes the expected index snapshot fixture from the mock
// source tables. It uses the actual domain package so the fixture matches
// real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -svi data/mock/svi_counties.csv \
//	  -demographics data/mock/elder_demographics.csv \
//	  -out data/mock/index_snapshot.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/elder-vulnerability-index/internal/adapter/dataset"
	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
)

// baseTime freezes report timestamps so regenerated fixtures stay diffable.
var baseTime = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	sviPath := flag.String("svi", "data/mock/svi_counties.csv", "SVI county CSV")
	demoPath := flag.String("demographics", "data/mock/elder_demographics.csv", "elder demographics CSV")
	outPath := flag.String("out", "data/mock/index_snapshot.json", "output path for the snapshot fixture")
	flag.Parse()

	domain.SetClock(clockwork.NewFakeClockAt(baseTime))
	defer domain.SetClock(nil)

	svi, err := dataset.LoadSVIFile(*sviPath)
	if err != nil {
		return err
	}
	demo, err := dataset.LoadDemographicsFile(*demoPath)
	if err != nil {
		return err
	}

	regions, mergeWarnings := domain.MergeRows(svi, demo)

	weights := domain.DefaultIndexWeights()
	thresholds := domain.DefaultTierThresholds()

	reports := make([]domain.RegionReport, 0, len(regions))
	warnings := make([]string, 0, len(mergeWarnings))
	for _, w := range mergeWarnings {
		warnings = append(warnings, w.Error())
	}
	for _, r := range regions {
		report, err := domain.BuildReport(r, weights, thresholds)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("region %s: %v", r.FIPS, err))
			continue
		}
		reports = append(reports, report)
	}

	snapshot := domain.NewIndexSnapshot(reports, warnings, baseTime)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outPath, append(data, '\n'), 0o644); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d regions, %d states, %d warnings\n",
		*outPath, len(snapshot.Regions), len(snapshot.States), len(snapshot.Warnings))

	printStats(snapshot)
	return nil
}

func printStats(snapshot *domain.IndexSnapshot) {
	tierCounts := map[domain.Tier]int{}
	underResourced := 0
	var maxIndex float64
	var maxFIPS string
	for i := range snapshot.Regions {
		r := &snapshot.Regions[i]
		tierCounts[r.Tier]++
		if r.UnderResourced {
			underResourced++
		}
		if r.Index > maxIndex {
			maxIndex = r.Index
			maxFIPS = r.FIPS
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(snapshot.Regions))
	fmt.Printf("By tier: high=%d, medium=%d, low=%d\n",
		tierCounts[domain.TierHigh], tierCounts[domain.TierMedium], tierCounts[domain.TierLow])
	fmt.Printf("Under-resourced: %d\n", underResourced)
	fmt.Printf("Max index: %g (%s)\n", maxIndex, maxFIPS)

	fmt.Println("\nState summaries:")
	for _, s := range snapshot.States {
		fmt.Printf("  %s: regions=%d mean_index=%g max_index=%g under_resourced=%d\n",
			s.State, s.Regions, s.MeanIndex, s.MaxIndex, s.UnderResourced)
	}
}
