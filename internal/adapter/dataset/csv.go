// Package dataset decodes the two source tables from CSV: the CDC SVI county
// table and the elderly demographics table.
//
// Column lookup is case-insensitive so exports from different tooling load
// without preprocessing. Numeric fields that fail to parse become NaN rather
// than aborting the load; range validation downstream then skips just that
// region and reports it, keeping the run partial-failure tolerant.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
)

// SVI table columns, named as in the CDC/ATSDR county export.
const (
	colFIPS      = "FIPS"
	colCounty    = "COUNTY"
	colState     = "STATE"
	colRPLThemes = "RPL_THEMES"
)

// Demographics table columns.
const (
	colDemoFIPS       = "fips"
	colDemoCounty     = "county"
	colDemoState      = "state"
	colElderlyPct     = "elderly_pct"
	colInfrastructure = "infrastructure_score"
	colFunding        = "funding_per_capita"
)

// ReadSVI decodes the CDC SVI county table. Rows without a FIPS code are
// dropped; the CDC -999 sentinel passes through for the merge step to report.
func ReadSVI(r io.Reader) ([]domain.SVIRow, error) {
	records, header, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("read svi table: %w", err)
	}
	if err := header.require(colFIPS, colRPLThemes); err != nil {
		return nil, fmt.Errorf("svi table: %w", err)
	}

	rows := make([]domain.SVIRow, 0, len(records))
	for _, rec := range records {
		fips := normalizeFIPS(header.get(rec, colFIPS))
		if fips == "" {
			continue
		}
		rows = append(rows, domain.SVIRow{
			FIPS:              fips,
			County:            header.get(rec, colCounty),
			State:             header.get(rec, colState),
			OverallPercentile: parseFloatOrNaN(header.get(rec, colRPLThemes)),
		})
	}
	return rows, nil
}

// ReadDemographics decodes the elderly demographics table. The elderly share
// arrives as a percentage (0-100) and is normalized to a fraction here.
func ReadDemographics(r io.Reader) ([]domain.DemographicRow, error) {
	records, header, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("read demographics table: %w", err)
	}
	if err := header.require(colDemoFIPS, colElderlyPct, colInfrastructure); err != nil {
		return nil, fmt.Errorf("demographics table: %w", err)
	}

	rows := make([]domain.DemographicRow, 0, len(records))
	for _, rec := range records {
		fips := normalizeFIPS(header.get(rec, colDemoFIPS))
		if fips == "" {
			continue
		}
		rows = append(rows, domain.DemographicRow{
			FIPS:                  fips,
			County:                header.get(rec, colDemoCounty),
			State:                 header.get(rec, colDemoState),
			ElderlyShare:          parseFloatOrNaN(header.get(rec, colElderlyPct)) / 100,
			InfrastructureQuality: parseFloatOrNaN(header.get(rec, colInfrastructure)),
			FundingPerCapita:      parseFloatOrZero(header.get(rec, colFunding)),
		})
	}
	return rows, nil
}

// LoadSVIFile reads the SVI table from a local file.
func LoadSVIFile(path string) ([]domain.SVIRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open svi table: %w", err)
	}
	defer f.Close()
	return ReadSVI(f)
}

// LoadDemographicsFile reads the demographics table from a local file.
func LoadDemographicsFile(path string) ([]domain.DemographicRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open demographics table: %w", err)
	}
	defer f.Close()
	return ReadDemographics(f)
}

// headerIndex maps lowercased column names to their position.
type headerIndex map[string]int

func (h headerIndex) get(record []string, column string) string {
	i, ok := h[strings.ToLower(column)]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (h headerIndex) require(columns ...string) error {
	for _, c := range columns {
		if _, ok := h[strings.ToLower(c)]; !ok {
			return fmt.Errorf("missing required column %q", c)
		}
	}
	return nil
}

// readTable decodes a CSV stream into its header index and data records.
func readTable(r io.Reader) ([][]string, headerIndex, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty table")
	}

	header := make(headerIndex, len(all[0]))
	for i, name := range all[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return all[1:], header, nil
}

// parseFloatOrNaN parses a float, returning NaN for empty or malformed
// values so range validation can report the region downstream.
func parseFloatOrNaN(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseFloatOrZero parses an optional numeric field, treating empty or
// malformed values as zero. Used for funding, which many county rows omit.
func parseFloatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// normalizeFIPS zero-pads county FIPS codes that lost their leading zero in
// a spreadsheet round-trip (e.g. 1001 -> 01001).
func normalizeFIPS(s string) string {
	if s == "" || len(s) >= 5 {
		return s
	}
	return strings.Repeat("0", 5-len(s)) + s
}
