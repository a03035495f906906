package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate(t *testing.T) {
	thresholds := DefaultTierThresholds()

	t.Run("documented example", func(t *testing.T) {
		// q=0.2, b=0.3, delta=10, k=0.1 -> 0.3 + 0.1*ln(11)*0.8
		result, err := Simulate(SimulationParams{
			InfrastructureQuality: 0.2,
			Baseline:              0.3,
			FundingDelta:          10,
			Sensitivity:           0.1,
		}, thresholds)

		require.NoError(t, err)
		assert.InDelta(t, 0.4918, result.ProjectedSatisfaction, 0.0005)
		assert.Equal(t, TierMedium, result.Tier)
	})

	t.Run("zero delta returns the baseline", func(t *testing.T) {
		result, err := Simulate(SimulationParams{
			InfrastructureQuality: 0.5,
			Baseline:              0.35,
			FundingDelta:          0,
			Sensitivity:           DefaultSensitivity,
		}, thresholds)

		require.NoError(t, err)
		assert.Equal(t, 0.35, result.ProjectedSatisfaction)
		assert.Equal(t, TierHigh, result.Tier)
	})

	t.Run("perfect infrastructure gains nothing", func(t *testing.T) {
		result, err := Simulate(SimulationParams{
			InfrastructureQuality: 1,
			Baseline:              0.8,
			FundingDelta:          1000,
			Sensitivity:           DefaultSensitivity,
		}, thresholds)

		require.NoError(t, err)
		assert.Equal(t, 0.8, result.ProjectedSatisfaction)
		assert.Equal(t, TierLow, result.Tier)
	})

	t.Run("negative delta", func(t *testing.T) {
		_, err := Simulate(SimulationParams{
			InfrastructureQuality: 0.2,
			Baseline:              0.3,
			FundingDelta:          -5,
			Sensitivity:           DefaultSensitivity,
		}, thresholds)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "funding_delta", verr.Field)
		assert.Equal(t, -5.0, verr.Value)
	})

	t.Run("quality out of range", func(t *testing.T) {
		_, err := Simulate(SimulationParams{
			InfrastructureQuality: 1.2,
			Baseline:              0.3,
			FundingDelta:          1,
			Sensitivity:           DefaultSensitivity,
		}, thresholds)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "infrastructure_quality", verr.Field)
	})

	t.Run("deterministic ID and frozen timestamp", func(t *testing.T) {
		frozen := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(frozen))
		t.Cleanup(func() { SetClock(nil) })

		params := SimulationParams{
			InfrastructureQuality: 0.4,
			Baseline:              0.4,
			FundingDelta:          25,
			Sensitivity:           DefaultSensitivity,
		}

		first, err := Simulate(params, thresholds)
		require.NoError(t, err)
		second, err := Simulate(params, thresholds)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.True(t, len(first.ID) > 4 && first.ID[:4] == "sim-")
		assert.Equal(t, frozen, first.ComputedAt)

		other, err := Simulate(SimulationParams{
			InfrastructureQuality: 0.4,
			Baseline:              0.4,
			FundingDelta:          26,
			Sensitivity:           DefaultSensitivity,
		}, thresholds)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, other.ID)
	})
}

func TestSimulate_SaturationAndMonotonicity(t *testing.T) {
	thresholds := DefaultTierThresholds()
	deltas := []float64{0, 0.5, 1, 5, 10, 100, 1e4, 1e8, 1e12}

	prev := -1.0
	for _, delta := range deltas {
		result, err := Simulate(SimulationParams{
			InfrastructureQuality: 0.1,
			Baseline:              0.6,
			FundingDelta:          delta,
			Sensitivity:           0.25,
		}, thresholds)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.ProjectedSatisfaction, prev, "delta=%g", delta)
		assert.LessOrEqual(t, result.ProjectedSatisfaction, 1.0, "delta=%g", delta)
		prev = result.ProjectedSatisfaction
	}

	// Large enough deltas must pin the projection to exactly 1.
	assert.Equal(t, 1.0, prev)
}

func TestTierFor(t *testing.T) {
	thresholds := DefaultTierThresholds()

	cases := []struct {
		satisfaction float64
		want         Tier
	}{
		{0, TierHigh},
		{0.39, TierHigh},
		{0.4, TierMedium}, // lower bound is medium
		{0.55, TierMedium},
		{0.7, TierMedium}, // upper bound is medium
		{0.71, TierLow},
		{1, TierLow},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.satisfaction, thresholds), "satisfaction=%g", tc.satisfaction)
	}
}

func TestTierThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultTierThresholds().Validate())
	assert.Error(t, TierThresholds{HighBelow: 0.8, LowAbove: 0.3}.Validate())
	assert.Error(t, TierThresholds{HighBelow: -0.1, LowAbove: 0.7}.Validate())
}
