package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// DefaultSensitivity is the default satisfaction gain per unit of
// log-scaled funding.
const DefaultSensitivity = 0.1

// TierThresholds map projected satisfaction to a priority tier. Satisfaction
// below HighBelow is high priority, above LowAbove low priority, medium in
// between (both bounds inclusive on the medium side).
type TierThresholds struct {
	HighBelow float64
	LowAbove  float64
}

// DefaultTierThresholds returns the 0.40 / 0.70 tier cut points.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{HighBelow: 0.4, LowAbove: 0.7}
}

// Validate checks that both cut points are in [0,1] and ordered.
func (th TierThresholds) Validate() error {
	if err := checkUnitInterval("tier_high_below", th.HighBelow); err != nil {
		return err
	}
	if err := checkUnitInterval("tier_low_above", th.LowAbove); err != nil {
		return err
	}
	if th.HighBelow > th.LowAbove {
		return &ValidationError{
			Field:  "tier_thresholds",
			Value:  th.HighBelow,
			Reason: "high cut point must not exceed low cut point",
		}
	}
	return nil
}

// TierFor maps a satisfaction score to its intervention-priority tier.
func TierFor(satisfaction float64, th TierThresholds) Tier {
	switch {
	case satisfaction < th.HighBelow:
		return TierHigh
	case satisfaction <= th.LowAbove:
		return TierMedium
	default:
		return TierLow
	}
}

// BaselineSatisfaction derives the default satisfaction baseline from the
// infrastructure quality score. Absent survey data, satisfaction is assumed
// to track the quality of the infrastructure serving the population.
func BaselineSatisfaction(quality float64) float64 {
	return quality
}

// SimulationParams are the inputs of one funding what-if run.
type SimulationParams struct {
	InfrastructureQuality float64 `json:"infrastructure_quality"`
	Baseline              float64 `json:"baseline_satisfaction"`
	FundingDelta          float64 `json:"funding_delta"`
	Sensitivity           float64 `json:"sensitivity"`
}

// SimulationResult is the ephemeral output of one simulation run. It is a
// pure function of its parameters: identical inputs produce an identical
// result, including the ID.
type SimulationResult struct {
	ID                    string           `json:"id"`
	Params                SimulationParams `json:"params"`
	ProjectedSatisfaction float64          `json:"projected_satisfaction"`
	Tier                  Tier             `json:"tier"`
	ComputedAt            time.Time        `json:"computed_at"`
}

// Simulate projects satisfaction after a proposed funding increase:
//
//	projected = min(1, baseline + k*ln(1+delta)*(1-quality))
//
// The log term models diminishing returns on funding, and existing
// infrastructure quality reduces the marginal benefit. The projection is
// non-decreasing in the funding delta and saturates at 1.
func Simulate(p SimulationParams, th TierThresholds) (SimulationResult, error) {
	if err := checkUnitInterval("infrastructure_quality", p.InfrastructureQuality); err != nil {
		return SimulationResult{}, err
	}
	if err := checkUnitInterval("baseline_satisfaction", p.Baseline); err != nil {
		return SimulationResult{}, err
	}
	if math.IsNaN(p.FundingDelta) || p.FundingDelta < 0 {
		return SimulationResult{}, &ValidationError{
			Field:  "funding_delta",
			Value:  p.FundingDelta,
			Reason: "must not be negative",
		}
	}
	if math.IsNaN(p.Sensitivity) || p.Sensitivity < 0 {
		return SimulationResult{}, &ValidationError{
			Field:  "sensitivity",
			Value:  p.Sensitivity,
			Reason: "must not be negative",
		}
	}
	if err := th.Validate(); err != nil {
		return SimulationResult{}, err
	}

	gain := p.Sensitivity * math.Log1p(p.FundingDelta) * (1 - p.InfrastructureQuality)
	projected := math.Min(1, p.Baseline+gain)

	return SimulationResult{
		ID:                    simulationID(p),
		Params:                p,
		ProjectedSatisfaction: projected,
		Tier:                  TierFor(projected, th),
		ComputedAt:            clock.Now().UTC(),
	}, nil
}

// simulationID hashes the parameters into a short deterministic ID, so a
// rerun with identical inputs is recognizable downstream.
func simulationID(p SimulationParams) string {
	input := fmt.Sprintf("%g|%g|%g|%g",
		p.InfrastructureQuality, p.Baseline, p.FundingDelta, p.Sensitivity)
	hash := sha256.Sum256([]byte(input))
	return "sim-" + hex.EncodeToString(hash[:8])
}
