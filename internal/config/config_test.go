package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data/mock/svi_counties.csv", cfg.SVIDatasetPath)
	assert.Equal(t, "data/mock/elder_demographics.csv", cfg.DemographicsDatasetPath)
	assert.Empty(t, cfg.SVIDatasetURL)
	assert.Equal(t, 30*time.Second, cfg.SVIFetchTimeout)
	assert.Equal(t, 24*time.Hour, cfg.RefreshInterval)
	assert.Equal(t, 0.5, cfg.SVIWeight)
	assert.Equal(t, 0.5, cfg.ElderlyWeight)
	assert.Equal(t, 0.1, cfg.Sensitivity)
	assert.Equal(t, 0.4, cfg.TierHighBelow)
	assert.Equal(t, 0.7, cfg.TierLowAbove)
	assert.Equal(t, 1000, cfg.SimulationCacheSize)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "elder-vulnerability-reports", cfg.KafkaSinkTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SVI_DATASET_PATH", "/data/svi2022.csv")
	t.Setenv("DEMOGRAPHICS_DATASET_PATH", "/data/elders.csv")
	t.Setenv("SVI_DATASET_URL", "https://example.com/svi.csv")
	t.Setenv("SVI_FETCH_TIMEOUT", "10s")
	t.Setenv("REFRESH_INTERVAL", "1h")
	t.Setenv("INDEX_WEIGHT_SVI", "0.7")
	t.Setenv("INDEX_WEIGHT_ELDERLY", "0.3")
	t.Setenv("SIMULATION_SENSITIVITY", "0.25")
	t.Setenv("TIER_HIGH_BELOW", "0.35")
	t.Setenv("TIER_LOW_ABOVE", "0.65")
	t.Setenv("SIMULATION_CACHE_SIZE", "50")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-reports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/data/svi2022.csv", cfg.SVIDatasetPath)
	assert.Equal(t, "/data/elders.csv", cfg.DemographicsDatasetPath)
	assert.Equal(t, "https://example.com/svi.csv", cfg.SVIDatasetURL)
	assert.Equal(t, 10*time.Second, cfg.SVIFetchTimeout)
	assert.Equal(t, time.Hour, cfg.RefreshInterval)
	assert.Equal(t, 0.7, cfg.SVIWeight)
	assert.Equal(t, 0.3, cfg.ElderlyWeight)
	assert.Equal(t, 0.25, cfg.Sensitivity)
	assert.Equal(t, 0.35, cfg.TierHighBelow)
	assert.Equal(t, 0.65, cfg.TierLowAbove)
	assert.Equal(t, 50, cfg.SimulationCacheSize)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-reports", cfg.KafkaSinkTopic)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "weights do not sum to one", key: "INDEX_WEIGHT_SVI", value: "0.9"},
		{name: "weight out of range", key: "INDEX_WEIGHT_ELDERLY", value: "1.5"},
		{name: "negative sensitivity", key: "SIMULATION_SENSITIVITY", value: "-0.1"},
		{name: "unordered tier thresholds", key: "TIER_HIGH_BELOW", value: "0.9"},
		{name: "zero refresh interval", key: "REFRESH_INTERVAL", value: "0s"},
		{name: "zero shutdown timeout", key: "SHUTDOWN_TIMEOUT", value: "0s"},
		{name: "zero fetch timeout", key: "SVI_FETCH_TIMEOUT", value: "0s"},
		{name: "zero cache size", key: "SIMULATION_CACHE_SIZE", value: "0"},
		{name: "unparsable duration", key: "REFRESH_INTERVAL", value: "often"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_KafkaRequiresTopic(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_SINK_TOPIC", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_DomainParams(t *testing.T) {
	t.Setenv("INDEX_WEIGHT_SVI", "0.6")
	t.Setenv("INDEX_WEIGHT_ELDERLY", "0.4")

	cfg, err := Load()
	require.NoError(t, err)

	w := cfg.IndexWeights()
	assert.Equal(t, 0.6, w.SocialVulnerability)
	assert.Equal(t, 0.4, w.ElderlyShare)

	th := cfg.TierThresholds()
	assert.Equal(t, 0.4, th.HighBelow)
	assert.Equal(t, 0.7, th.LowAbove)
}
