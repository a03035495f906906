package domain

import (
	"fmt"
	"sort"
)

// MergeRows joins the SVI and demographics tables on FIPS code. Regions
// present in only one table, and SVI rows carrying the -999 suppression
// sentinel, are excluded and reported as warnings; the merge itself never
// fails. Output is sorted by FIPS so downstream processing is deterministic.
func MergeRows(svi []SVIRow, demo []DemographicRow) ([]Region, []error) {
	demoByFIPS := make(map[string]DemographicRow, len(demo))
	for _, d := range demo {
		demoByFIPS[d.FIPS] = d
	}

	regions := make([]Region, 0, len(svi))
	var warnings []error
	matched := make(map[string]bool, len(svi))

	for _, s := range svi {
		if s.OverallPercentile == SVIMissingSentinel {
			warnings = append(warnings, fmt.Errorf("region %s: %w", s.FIPS, &ValidationError{
				Field:  "social_vulnerability",
				Value:  s.OverallPercentile,
				Reason: "value suppressed by source (CDC -999 sentinel)",
			}))
			matched[s.FIPS] = true // suppressed, not a join miss
			continue
		}

		d, ok := demoByFIPS[s.FIPS]
		if !ok {
			warnings = append(warnings, &MissingDataError{FIPS: s.FIPS, Dataset: "demographics"})
			continue
		}
		matched[s.FIPS] = true

		regions = append(regions, Region{
			FIPS:                  s.FIPS,
			County:                firstNonEmpty(s.County, d.County),
			State:                 firstNonEmpty(s.State, d.State),
			SocialVulnerability:   s.OverallPercentile,
			ElderlyShare:          d.ElderlyShare,
			InfrastructureQuality: d.InfrastructureQuality,
			FundingPerCapita:      d.FundingPerCapita,
		})
	}

	for _, d := range demo {
		if !matched[d.FIPS] {
			warnings = append(warnings, &MissingDataError{FIPS: d.FIPS, Dataset: "svi"})
		}
	}

	sort.Slice(regions, func(i, j int) bool { return regions[i].FIPS < regions[j].FIPS })
	return regions, warnings
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
