package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIndex(t *testing.T) {
	weights := DefaultIndexWeights()

	t.Run("equal weights example", func(t *testing.T) {
		index, err := ComputeIndex(0.8, 0.3, weights)
		require.NoError(t, err)
		assert.InDelta(t, 0.55, index, 1e-12)
	})

	t.Run("zero elderly share falls back to the SVI value", func(t *testing.T) {
		index, err := ComputeIndex(0.8, 0, weights)
		require.NoError(t, err)
		assert.Equal(t, 0.8, index)
	})

	t.Run("custom weights", func(t *testing.T) {
		index, err := ComputeIndex(0.5, 0.2, IndexWeights{SocialVulnerability: 0.7, ElderlyShare: 0.3})
		require.NoError(t, err)
		assert.InDelta(t, 0.41, index, 1e-12)
	})

	t.Run("out of range vulnerability", func(t *testing.T) {
		_, err := ComputeIndex(1.2, 0.3, weights)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "social_vulnerability", verr.Field)
		assert.Equal(t, 1.2, verr.Value)
	})

	t.Run("negative elderly share", func(t *testing.T) {
		_, err := ComputeIndex(0.5, -0.1, weights)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "elderly_share", verr.Field)
	})

	t.Run("invalid weights", func(t *testing.T) {
		_, err := ComputeIndex(0.5, 0.5, IndexWeights{SocialVulnerability: 0.8, ElderlyShare: 0.8})
		assert.Error(t, err)
	})
}

func TestComputeIndex_RangeAndMonotonicity(t *testing.T) {
	weights := DefaultIndexWeights()
	grid := []float64{0, 0.1, 0.25, 0.4, 0.5, 0.75, 0.9, 1}

	t.Run("result stays in unit interval", func(t *testing.T) {
		for _, s := range grid {
			for _, e := range grid {
				index, err := ComputeIndex(s, e, weights)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, index, 0.0, "s=%g e=%g", s, e)
				assert.LessOrEqual(t, index, 1.0, "s=%g e=%g", s, e)
			}
		}
	})

	t.Run("non-decreasing in vulnerability", func(t *testing.T) {
		for _, e := range grid {
			prev := -1.0
			for _, s := range grid {
				index, err := ComputeIndex(s, e, weights)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, index, prev, "s=%g e=%g", s, e)
				prev = index
			}
		}
	})

	t.Run("non-decreasing in elderly share", func(t *testing.T) {
		// e == 0 is the missing-data fallback, not part of the ordering.
		for _, s := range grid {
			prev := -1.0
			for _, e := range grid[1:] {
				index, err := ComputeIndex(s, e, weights)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, index, prev, "s=%g e=%g", s, e)
				prev = index
			}
		}
	})
}

func TestIndexWeights_Validate(t *testing.T) {
	cases := []struct {
		name    string
		weights IndexWeights
		wantErr bool
	}{
		{name: "defaults", weights: DefaultIndexWeights()},
		{name: "skewed", weights: IndexWeights{SocialVulnerability: 0.9, ElderlyShare: 0.1}},
		{name: "all vulnerability", weights: IndexWeights{SocialVulnerability: 1}},
		{name: "sum above one", weights: IndexWeights{SocialVulnerability: 0.6, ElderlyShare: 0.6}, wantErr: true},
		{name: "sum below one", weights: IndexWeights{SocialVulnerability: 0.3, ElderlyShare: 0.3}, wantErr: true},
		{name: "negative weight", weights: IndexWeights{SocialVulnerability: -0.2, ElderlyShare: 1.2}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.weights.Validate()
			if tc.wantErr {
				var verr *ValidationError
				assert.True(t, errors.As(err, &verr))
				return
			}
			assert.NoError(t, err)
		})
	}
}
