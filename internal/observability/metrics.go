package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// index builder and the simulation API.
type Metrics struct {
	RegionsComputed prometheus.Counter
	RegionsSkipped  *prometheus.CounterVec // labels: reason={validation,missing_data}
	RefreshRunning  prometheus.Gauge

	// Snapshot build metrics.
	BuildDuration       prometheus.Histogram
	DatasetLoadDuration *prometheus.HistogramVec // labels: source={svi,demographics}
	SnapshotRegions     prometheus.Gauge
	LastRefreshUnix     prometheus.Gauge

	// Simulation metrics.
	Simulations     *prometheus.CounterVec // labels: outcome={success,invalid}
	SimulationCache *prometheus.CounterVec // labels: result={hit,miss}

	// Report publication metrics.
	ReportsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RegionsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "elder_vuln",
			Name:      "regions_computed_total",
			Help:      "Total region reports computed across all snapshot builds.",
		}),
		RegionsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elder_vuln",
			Name:      "regions_skipped_total",
			Help:      "Regions excluded from a snapshot by skip reason.",
		}, []string{"reason"}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "elder_vuln",
			Name:      "refresh_loop_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "elder_vuln",
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete load-merge-compute snapshot build.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DatasetLoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "elder_vuln",
			Name:      "dataset_load_duration_seconds",
			Help:      "Source dataset load duration by source table.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		}, []string{"source"}),
		SnapshotRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "elder_vuln",
			Name:      "snapshot_regions",
			Help:      "Number of regions in the snapshot currently being served.",
		}),
		LastRefreshUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "elder_vuln",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful snapshot build.",
		}),
		Simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elder_vuln",
			Name:      "simulations_total",
			Help:      "Funding simulations by outcome.",
		}, []string{"outcome"}),
		SimulationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elder_vuln",
			Name:      "simulation_cache_total",
			Help:      "Simulation cache lookups by result.",
		}, []string{"result"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "elder_vuln",
			Name:      "reports_published_total",
			Help:      "Region reports published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "elder_vuln",
			Name:      "publish_errors_total",
			Help:      "Failed publish attempts after snapshot builds.",
		}),
	}

	prometheus.MustRegister(
		m.RegionsComputed,
		m.RegionsSkipped,
		m.RefreshRunning,
		m.BuildDuration,
		m.DatasetLoadDuration,
		m.SnapshotRegions,
		m.LastRefreshUnix,
		m.Simulations,
		m.SimulationCache,
		m.ReportsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RegionsComputed:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "elder_vuln", Name: "regions_computed_total"}),
		RegionsSkipped:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "elder_vuln", Name: "regions_skipped_total"}, []string{"reason"}),
		RefreshRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "elder_vuln", Name: "refresh_loop_running"}),
		BuildDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "elder_vuln", Name: "build_duration_seconds"}),
		DatasetLoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "elder_vuln", Name: "dataset_load_duration_seconds"}, []string{"source"}),
		SnapshotRegions:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "elder_vuln", Name: "snapshot_regions"}),
		LastRefreshUnix:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "elder_vuln", Name: "last_refresh_timestamp_seconds"}),
		Simulations:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "elder_vuln", Name: "simulations_total"}, []string{"outcome"}),
		SimulationCache:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "elder_vuln", Name: "simulation_cache_total"}, []string{"result"}),
		ReportsPublished:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "elder_vuln", Name: "reports_published_total"}),
		PublishErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "elder_vuln", Name: "publish_errors_total"}),
	}
}
