package domain

import (
	"sort"
	"time"
)

// StateSummary aggregates the index table per state, mirroring the
// dashboard's state comparison view.
type StateSummary struct {
	State              string  `json:"state"`
	Regions            int     `json:"regions"`
	MeanVulnerability  float64 `json:"mean_social_vulnerability"`
	MeanElderlyShare   float64 `json:"mean_elderly_share"`
	MeanInfrastructure float64 `json:"mean_infrastructure_quality"`
	MeanIndex          float64 `json:"mean_index"`
	MaxIndex           float64 `json:"max_index"`
	UnderResourced     int     `json:"under_resourced"`
}

// IndexSnapshot is the immutable result of one index build: the full region
// table, per-state aggregates, and the data-quality warnings produced along
// the way. Snapshots are swapped atomically; readers never observe a partial
// table.
type IndexSnapshot struct {
	Regions  []RegionReport `json:"regions"`
	States   []StateSummary `json:"states"`
	Warnings []string       `json:"warnings,omitempty"`
	BuiltAt  time.Time      `json:"built_at"`

	byFIPS map[string]int
}

// NewIndexSnapshot assembles a snapshot from computed reports. Reports are
// sorted by FIPS and summarized per state.
func NewIndexSnapshot(reports []RegionReport, warnings []string, builtAt time.Time) *IndexSnapshot {
	sorted := make([]RegionReport, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FIPS < sorted[j].FIPS })

	byFIPS := make(map[string]int, len(sorted))
	for i, r := range sorted {
		byFIPS[r.FIPS] = i
	}

	return &IndexSnapshot{
		Regions:  sorted,
		States:   SummarizeStates(sorted),
		Warnings: warnings,
		BuiltAt:  builtAt,
		byFIPS:   byFIPS,
	}
}

// Region looks up a report by FIPS code.
func (s *IndexSnapshot) Region(fips string) (RegionReport, bool) {
	i, ok := s.byFIPS[fips]
	if !ok {
		return RegionReport{}, false
	}
	return s.Regions[i], true
}

// Filter returns the reports matching the given state and tier. Empty
// arguments match everything.
func (s *IndexSnapshot) Filter(state string, tier Tier) []RegionReport {
	out := make([]RegionReport, 0, len(s.Regions))
	for _, r := range s.Regions {
		if state != "" && r.State != state {
			continue
		}
		if tier != "" && r.Tier != tier {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SummarizeStates aggregates reports by state, sorted by state code.
func SummarizeStates(reports []RegionReport) []StateSummary {
	acc := make(map[string]*StateSummary)
	for _, r := range reports {
		s, ok := acc[r.State]
		if !ok {
			s = &StateSummary{State: r.State}
			acc[r.State] = s
		}
		s.Regions++
		s.MeanVulnerability += r.SocialVulnerability
		s.MeanElderlyShare += r.ElderlyShare
		s.MeanInfrastructure += r.InfrastructureQuality
		s.MeanIndex += r.Index
		if r.Index > s.MaxIndex {
			s.MaxIndex = r.Index
		}
		if r.UnderResourced {
			s.UnderResourced++
		}
	}

	out := make([]StateSummary, 0, len(acc))
	for _, s := range acc {
		n := float64(s.Regions)
		s.MeanVulnerability /= n
		s.MeanElderlyShare /= n
		s.MeanInfrastructure /= n
		s.MeanIndex /= n
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}
