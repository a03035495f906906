// Command validate performs end-to-end data integrity checks across the mock
// data sources and the index snapshot fixture: source CSVs, join coverage,
// index recomputation, and aggregate consistency.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -svi data/mock/svi_counties.csv \
//	  -demographics data/mock/elder_demographics.csv \
//	  -snapshot data/mock/index_snapshot.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/elder-vulnerability-index/internal/adapter/dataset"
	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
)

// baseTime matches genmock so recomputed timestamps line up with the fixture.
var baseTime = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	sviPath := flag.String("svi", "data/mock/svi_counties.csv", "SVI county CSV")
	demoPath := flag.String("demographics", "data/mock/elder_demographics.csv", "elder demographics CSV")
	snapshotPath := flag.String("snapshot", "data/mock/index_snapshot.json", "index snapshot fixture")
	flag.Parse()

	if code := run(*sviPath, *demoPath, *snapshotPath); code != 0 {
		os.Exit(code)
	}
}

func run(sviPath, demoPath, snapshotPath string) int {
	domain.SetClock(clockwork.NewFakeClockAt(baseTime))
	defer domain.SetClock(nil)

	fmt.Println("=== Elder Vulnerability Index Integrity Validation ===")
	fmt.Println()

	svi, err := dataset.LoadSVIFile(sviPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load SVI CSV: %v\n", err)
		return 1
	}
	demo, err := dataset.LoadDemographicsFile(demoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load demographics CSV: %v\n", err)
		return 1
	}
	snapshot, err := loadSnapshot(snapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load snapshot fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSourceTables(svi, demo),
		validateJoinCoverage(svi, demo, snapshot),
		validateIndexRecompute(snapshot),
		validateStateAggregates(snapshot),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d SVI rows, %d demographic rows, %d snapshot regions, %d states, %d warnings\n",
		len(svi), len(demo), len(snapshot.Regions), len(snapshot.States), len(snapshot.Warnings))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadSnapshot(path string) (*domain.IndexSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot domain.IndexSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ── Phase 1: Source Tables ──
// Validates the raw CSVs: FIPS format, value ranges, and the -999 sentinel.

func validateSourceTables(svi []domain.SVIRow, demo []domain.DemographicRow) *phase {
	p := &phase{name: "Phase 1: Source Tables (CSV ranges)"}

	for _, row := range svi {
		if len(row.FIPS) != 5 {
			p.errorf("svi %s: FIPS is not 5 digits", row.FIPS)
		}
		v := row.OverallPercentile
		if v == domain.SVIMissingSentinel {
			continue // suppressed value, surfaced as a merge warning downstream
		}
		if math.IsNaN(v) || v < 0 || v > 1 {
			p.errorf("svi %s: RPL_THEMES %g out of [0,1]", row.FIPS, v)
		}
	}

	for _, row := range demo {
		if len(row.FIPS) != 5 {
			p.errorf("demographics %s: FIPS is not 5 digits", row.FIPS)
		}
		if math.IsNaN(row.ElderlyShare) || row.ElderlyShare < 0 || row.ElderlyShare > 1 {
			p.errorf("demographics %s: elderly share %g out of [0,1]", row.FIPS, row.ElderlyShare)
		}
		if math.IsNaN(row.InfrastructureQuality) || row.InfrastructureQuality < 0 || row.InfrastructureQuality > 1 {
			p.errorf("demographics %s: infrastructure score %g out of [0,1]", row.FIPS, row.InfrastructureQuality)
		}
		if row.FundingPerCapita < 0 {
			p.errorf("demographics %s: negative funding %g", row.FIPS, row.FundingPerCapita)
		}
	}
	return p
}

// ── Phase 2: Join Coverage ──
// Validates that the snapshot contains exactly the regions present in both
// CSVs with valid SVI values, and that unjoined rows appear as warnings.

func validateJoinCoverage(svi []domain.SVIRow, demo []domain.DemographicRow, snapshot *domain.IndexSnapshot) *phase {
	p := &phase{name: "Phase 2: Join Coverage (CSV vs snapshot)"}

	sviByFIPS := map[string]domain.SVIRow{}
	for _, row := range svi {
		sviByFIPS[row.FIPS] = row
	}
	demoByFIPS := map[string]domain.DemographicRow{}
	for _, row := range demo {
		demoByFIPS[row.FIPS] = row
	}
	inSnapshot := map[string]bool{}
	for i := range snapshot.Regions {
		inSnapshot[snapshot.Regions[i].FIPS] = true
	}

	expected := 0
	for fips, s := range sviByFIPS {
		_, joined := demoByFIPS[fips]
		computable := joined && s.OverallPercentile != domain.SVIMissingSentinel
		if computable {
			expected++
		}
		if computable && !inSnapshot[fips] {
			p.errorf("%s: joinable row missing from snapshot", fips)
		}
		if !computable && inSnapshot[fips] {
			p.errorf("%s: uncomputable row present in snapshot", fips)
		}
	}
	for fips := range demoByFIPS {
		if _, ok := sviByFIPS[fips]; !ok && inSnapshot[fips] {
			p.errorf("%s: demographics-only row present in snapshot", fips)
		}
	}
	if len(snapshot.Regions) != expected {
		p.errorf("snapshot has %d regions, expected %d computable rows", len(snapshot.Regions), expected)
	}

	// Every dropped row must leave a trace in the warnings list.
	for fips, s := range sviByFIPS {
		_, joined := demoByFIPS[fips]
		if joined && s.OverallPercentile != domain.SVIMissingSentinel {
			continue
		}
		if !warningsMention(snapshot.Warnings, fips) {
			p.errorf("%s: dropped row has no warning in snapshot", fips)
		}
	}
	for fips := range demoByFIPS {
		if _, ok := sviByFIPS[fips]; ok {
			continue
		}
		if !warningsMention(snapshot.Warnings, fips) {
			p.errorf("%s: dropped row has no warning in snapshot", fips)
		}
	}
	return p
}

func warningsMention(warnings []string, fips string) bool {
	for _, w := range warnings {
		if strings.Contains(w, fips) {
			return true
		}
	}
	return false
}

// ── Phase 3: Index Recompute ──
// Re-derives every report from its own inputs and compares with the fixture.

func validateIndexRecompute(snapshot *domain.IndexSnapshot) *phase {
	p := &phase{name: "Phase 3: Index Recompute (domain vs fixture)"}

	weights := domain.DefaultIndexWeights()
	thresholds := domain.DefaultTierThresholds()

	for i := range snapshot.Regions {
		got := snapshot.Regions[i]
		want, err := domain.BuildReport(got.Region, weights, thresholds)
		if err != nil {
			p.errorf("%s: recompute failed: %v", got.FIPS, err)
			continue
		}
		if !floatEq(got.Index, want.Index) {
			p.errorf("%s: index: expected %g, got %g", got.FIPS, want.Index, got.Index)
		}
		if !floatEq(got.BaselineSatisfaction, want.BaselineSatisfaction) {
			p.errorf("%s: baseline: expected %g, got %g", got.FIPS, want.BaselineSatisfaction, got.BaselineSatisfaction)
		}
		if got.Tier != want.Tier {
			p.errorf("%s: tier: expected %q, got %q", got.FIPS, want.Tier, got.Tier)
		}
		if got.UnderResourced != want.UnderResourced {
			p.errorf("%s: under_resourced: expected %t, got %t", got.FIPS, want.UnderResourced, got.UnderResourced)
		}
	}

	// Region table must be sorted by FIPS for deterministic output.
	for i := 1; i < len(snapshot.Regions); i++ {
		if snapshot.Regions[i-1].FIPS >= snapshot.Regions[i].FIPS {
			p.errorf("regions out of order at %d: %s >= %s", i, snapshot.Regions[i-1].FIPS, snapshot.Regions[i].FIPS)
		}
	}
	return p
}

// ── Phase 4: State Aggregates ──
// Re-aggregates the region table and compares with the fixture's summaries.

func validateStateAggregates(snapshot *domain.IndexSnapshot) *phase {
	p := &phase{name: "Phase 4: State Aggregates (summaries)"}

	want := domain.SummarizeStates(snapshot.Regions)
	if len(want) != len(snapshot.States) {
		p.errorf("state count: expected %d, got %d", len(want), len(snapshot.States))
		return p
	}
	for i := range want {
		got := snapshot.States[i]
		if got.State != want[i].State {
			p.errorf("state %d: expected %q, got %q", i, want[i].State, got.State)
			continue
		}
		if got.Regions != want[i].Regions {
			p.errorf("%s: regions: expected %d, got %d", got.State, want[i].Regions, got.Regions)
		}
		if !floatEq(got.MeanIndex, want[i].MeanIndex) {
			p.errorf("%s: mean index: expected %g, got %g", got.State, want[i].MeanIndex, got.MeanIndex)
		}
		if !floatEq(got.MaxIndex, want[i].MaxIndex) {
			p.errorf("%s: max index: expected %g, got %g", got.State, want[i].MaxIndex, got.MaxIndex)
		}
		if got.UnderResourced != want[i].UnderResourced {
			p.errorf("%s: under-resourced: expected %d, got %d", got.State, want[i].UnderResourced, got.UnderResourced)
		}
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
