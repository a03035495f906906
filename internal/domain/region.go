package domain

import (
	"math"
	"time"
)

// SVIMissingSentinel is the CDC placeholder for suppressed or unavailable
// values in SVI tables.
const SVIMissingSentinel = -999

// SVIRow is one county row from the CDC SVI table.
type SVIRow struct {
	FIPS              string
	County            string
	State             string
	OverallPercentile float64 // RPL_THEMES, 0-1 or -999 when suppressed
}

// DemographicRow is one county row from the demographics table. ElderlyShare
// is already normalized to a fraction by the loader.
type DemographicRow struct {
	FIPS                  string
	County                string
	State                 string
	ElderlyShare          float64
	InfrastructureQuality float64
	FundingPerCapita      float64
}

// Region is the merged per-county input to the index and the simulator.
type Region struct {
	FIPS                  string  `json:"fips"`
	County                string  `json:"county"`
	State                 string  `json:"state"`
	SocialVulnerability   float64 `json:"social_vulnerability"`
	ElderlyShare          float64 `json:"elderly_share"`
	InfrastructureQuality float64 `json:"infrastructure_quality"`
	FundingPerCapita      float64 `json:"funding_per_capita"`
}

// Tier is the intervention-priority bucket derived from projected
// satisfaction. Lower satisfaction means higher priority.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Under-resourced flag thresholds, from the dashboard's insight list: a large
// elderly population served by weak infrastructure.
const (
	UnderResourcedElderlyShare = 0.2
	UnderResourcedQuality      = 0.4
)

// RegionReport is one computed row of the index table. Reports are rebuilt
// from scratch on every refresh and never mutated in place.
type RegionReport struct {
	Region

	Index                float64 `json:"index"`
	BaselineSatisfaction float64 `json:"baseline_satisfaction"`
	Tier                 Tier    `json:"tier"`
	UnderResourced       bool    `json:"under_resourced"`

	ComputedAt time.Time `json:"computed_at"`
}

// BuildReport validates a merged region and derives its index table row:
// index, baseline satisfaction, priority tier, and the under-resourced flag.
func BuildReport(r Region, w IndexWeights, th TierThresholds) (RegionReport, error) {
	index, err := ComputeIndex(r.SocialVulnerability, r.ElderlyShare, w)
	if err != nil {
		return RegionReport{}, err
	}
	if err := checkUnitInterval("infrastructure_quality", r.InfrastructureQuality); err != nil {
		return RegionReport{}, err
	}
	if math.IsNaN(r.FundingPerCapita) || r.FundingPerCapita < 0 {
		return RegionReport{}, &ValidationError{
			Field:  "funding_per_capita",
			Value:  r.FundingPerCapita,
			Reason: "must not be negative",
		}
	}

	baseline := BaselineSatisfaction(r.InfrastructureQuality)
	return RegionReport{
		Region:               r,
		Index:                index,
		BaselineSatisfaction: baseline,
		Tier:                 TierFor(baseline, th),
		UnderResourced: r.ElderlyShare >= UnderResourcedElderlyShare &&
			r.InfrastructureQuality < UnderResourcedQuality,
		ComputedAt: clock.Now().UTC(),
	}, nil
}
