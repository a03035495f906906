package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Dataset sources. The SVI table is read from SVIDatasetPath unless
	// SVIDatasetURL is set, in which case it is downloaded on every refresh.
	SVIDatasetPath          string        `env:"SVI_DATASET_PATH" envDefault:"data/mock/svi_counties.csv"`
	DemographicsDatasetPath string        `env:"DEMOGRAPHICS_DATASET_PATH" envDefault:"data/mock/elder_demographics.csv"`
	SVIDatasetURL           string        `env:"SVI_DATASET_URL"`
	SVIFetchTimeout         time.Duration `env:"SVI_FETCH_TIMEOUT" envDefault:"30s"`

	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"24h"`

	// Index and simulation parameters. Defaults are illustrative policy
	// knobs, not authoritative constants.
	SVIWeight     float64 `env:"INDEX_WEIGHT_SVI" envDefault:"0.5"`
	ElderlyWeight float64 `env:"INDEX_WEIGHT_ELDERLY" envDefault:"0.5"`
	Sensitivity   float64 `env:"SIMULATION_SENSITIVITY" envDefault:"0.1"`
	TierHighBelow float64 `env:"TIER_HIGH_BELOW" envDefault:"0.4"`
	TierLowAbove  float64 `env:"TIER_LOW_ABOVE" envDefault:"0.7"`

	SimulationCacheSize int `env:"SIMULATION_CACHE_SIZE" envDefault:"1000"`

	// Optional Kafka publication of computed reports after each refresh.
	KafkaEnabled   bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers   []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaSinkTopic string   `env:"KAFKA_SINK_TOPIC" envDefault:"elder-vulnerability-reports"`
}

// Load reads configuration from environment variables, applying defaults
// where unset, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.RefreshInterval <= 0 {
		return nil, errors.New("REFRESH_INTERVAL must be positive")
	}
	if cfg.SVIFetchTimeout <= 0 {
		return nil, errors.New("SVI_FETCH_TIMEOUT must be positive")
	}
	if cfg.SVIDatasetPath == "" && cfg.SVIDatasetURL == "" {
		return nil, errors.New("one of SVI_DATASET_PATH or SVI_DATASET_URL is required")
	}
	if cfg.DemographicsDatasetPath == "" {
		return nil, errors.New("DEMOGRAPHICS_DATASET_PATH is required")
	}
	if cfg.SimulationCacheSize <= 0 {
		return nil, errors.New("SIMULATION_CACHE_SIZE must be positive")
	}

	if err := cfg.IndexWeights().Validate(); err != nil {
		return nil, fmt.Errorf("index weights: %w", err)
	}
	if err := cfg.TierThresholds().Validate(); err != nil {
		return nil, fmt.Errorf("tier thresholds: %w", err)
	}
	if cfg.Sensitivity < 0 {
		return nil, errors.New("SIMULATION_SENSITIVITY must not be negative")
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is not set")
		}
	}

	return cfg, nil
}

// IndexWeights returns the configured index weights.
func (c *Config) IndexWeights() domain.IndexWeights {
	return domain.IndexWeights{
		SocialVulnerability: c.SVIWeight,
		ElderlyShare:        c.ElderlyWeight,
	}
}

// TierThresholds returns the configured tier cut points.
func (c *Config) TierThresholds() domain.TierThresholds {
	return domain.TierThresholds{
		HighBelow: c.TierHighBelow,
		LowAbove:  c.TierLowAbove,
	}
}
