package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport(t *testing.T, r Region) RegionReport {
	t.Helper()
	report, err := BuildReport(r, DefaultIndexWeights(), DefaultTierThresholds())
	require.NoError(t, err)
	return report
}

func TestBuildReport(t *testing.T) {
	frozen := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })

	t.Run("derives index, tier, and flags", func(t *testing.T) {
		report := testReport(t, Region{
			FIPS:                  "48001",
			State:                 "TX",
			SocialVulnerability:   0.8,
			ElderlyShare:          0.3,
			InfrastructureQuality: 0.35,
			FundingPerCapita:      112,
		})

		assert.InDelta(t, 0.55, report.Index, 1e-12)
		assert.Equal(t, 0.35, report.BaselineSatisfaction)
		assert.Equal(t, TierHigh, report.Tier)
		assert.True(t, report.UnderResourced)
		assert.Equal(t, frozen, report.ComputedAt)
	})

	t.Run("well served region is not flagged", func(t *testing.T) {
		report := testReport(t, Region{
			FIPS:                  "48113",
			SocialVulnerability:   0.4,
			ElderlyShare:          0.1,
			InfrastructureQuality: 0.75,
		})

		assert.False(t, report.UnderResourced)
		assert.Equal(t, TierLow, report.Tier)
	})

	t.Run("rejects bad quality score", func(t *testing.T) {
		_, err := BuildReport(Region{
			SocialVulnerability:   0.4,
			ElderlyShare:          0.1,
			InfrastructureQuality: 1.4,
		}, DefaultIndexWeights(), DefaultTierThresholds())

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "infrastructure_quality", verr.Field)
	})

	t.Run("rejects negative funding", func(t *testing.T) {
		_, err := BuildReport(Region{
			SocialVulnerability:   0.4,
			ElderlyShare:          0.1,
			InfrastructureQuality: 0.5,
			FundingPerCapita:      -20,
		}, DefaultIndexWeights(), DefaultTierThresholds())

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "funding_per_capita", verr.Field)
	})
}

func TestIndexSnapshot(t *testing.T) {
	builtAt := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	reports := []RegionReport{
		testReport(t, Region{FIPS: "48113", State: "TX", SocialVulnerability: 0.72, ElderlyShare: 0.11, InfrastructureQuality: 0.6}),
		testReport(t, Region{FIPS: "40109", State: "OK", SocialVulnerability: 0.64, ElderlyShare: 0.13, InfrastructureQuality: 0.5}),
		testReport(t, Region{FIPS: "48001", State: "TX", SocialVulnerability: 0.81, ElderlyShare: 0.24, InfrastructureQuality: 0.3}),
	}

	snap := NewIndexSnapshot(reports, []string{"region 48999 missing from demographics dataset"}, builtAt)

	t.Run("sorted by FIPS", func(t *testing.T) {
		require.Len(t, snap.Regions, 3)
		assert.Equal(t, "40109", snap.Regions[0].FIPS)
		assert.Equal(t, "48001", snap.Regions[1].FIPS)
		assert.Equal(t, "48113", snap.Regions[2].FIPS)
	})

	t.Run("lookup by FIPS", func(t *testing.T) {
		report, ok := snap.Region("48001")
		require.True(t, ok)
		assert.Equal(t, "TX", report.State)

		_, ok = snap.Region("99999")
		assert.False(t, ok)
	})

	t.Run("filter by state and tier", func(t *testing.T) {
		assert.Len(t, snap.Filter("TX", ""), 2)
		assert.Len(t, snap.Filter("", TierHigh), 1)
		assert.Len(t, snap.Filter("OK", TierHigh), 0)
		assert.Len(t, snap.Filter("", ""), 3)
	})

	t.Run("state summaries", func(t *testing.T) {
		require.Len(t, snap.States, 2)

		ok := snap.States[0]
		assert.Equal(t, "OK", ok.State)
		assert.Equal(t, 1, ok.Regions)

		tx := snap.States[1]
		assert.Equal(t, "TX", tx.State)
		assert.Equal(t, 2, tx.Regions)
		assert.InDelta(t, 0.765, tx.MeanVulnerability, 1e-12)
		assert.InDelta(t, 0.175, tx.MeanElderlyShare, 1e-12)
		assert.InDelta(t, 0.47, tx.MeanIndex, 1e-9)
		assert.InDelta(t, 0.525, tx.MaxIndex, 1e-9)
		assert.Equal(t, 1, tx.UnderResourced)
	})

	t.Run("carries warnings and build time", func(t *testing.T) {
		assert.Equal(t, builtAt, snap.BuiltAt)
		require.Len(t, snap.Warnings, 1)
		assert.Contains(t, snap.Warnings[0], "48999")
	})
}
