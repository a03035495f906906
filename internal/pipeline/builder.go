package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
	"github.com/couchcryptid/elder-vulnerability-index/internal/observability"
)

// SVISource loads the SVI county table.
type SVISource interface {
	LoadSVI(ctx context.Context) ([]domain.SVIRow, error)
}

// DemographicsSource loads the elderly demographics table.
type DemographicsSource interface {
	LoadDemographics(ctx context.Context) ([]domain.DemographicRow, error)
}

// Builder runs one load-merge-compute cycle and produces an index snapshot.
type Builder struct {
	svi        SVISource
	demo       DemographicsSource
	weights    domain.IndexWeights
	thresholds domain.TierThresholds
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewBuilder creates a Builder with the given sources and index parameters.
func NewBuilder(svi SVISource, demo DemographicsSource, weights domain.IndexWeights, thresholds domain.TierThresholds, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{
		svi:        svi,
		demo:       demo,
		weights:    weights,
		thresholds: thresholds,
		logger:     logger,
		metrics:    metrics,
	}
}

// Build loads both tables, merges them on FIPS, and computes a report per
// region. Per-region failures are skipped and reported as warnings; Build
// fails only when a source table cannot be loaded at all.
func (b *Builder) Build(ctx context.Context) (*domain.IndexSnapshot, error) {
	start := time.Now()

	svi, err := b.loadSVI(ctx)
	if err != nil {
		return nil, fmt.Errorf("load svi table: %w", err)
	}
	demo, err := b.loadDemographics(ctx)
	if err != nil {
		return nil, fmt.Errorf("load demographics table: %w", err)
	}

	regions, mergeWarnings := domain.MergeRows(svi, demo)
	warnings := make([]string, 0, len(mergeWarnings))
	for _, w := range mergeWarnings {
		b.recordSkip(w)
		b.logger.Warn("region excluded", "error", w)
		warnings = append(warnings, w.Error())
	}

	reports, computeWarnings := b.computeReports(ctx, regions)
	warnings = append(warnings, computeWarnings...)

	snapshot := domain.NewIndexSnapshot(reports, warnings, time.Now().UTC())

	b.metrics.RegionsComputed.Add(float64(len(reports)))
	b.metrics.SnapshotRegions.Set(float64(len(reports)))
	b.metrics.LastRefreshUnix.Set(float64(snapshot.BuiltAt.Unix()))
	b.metrics.BuildDuration.Observe(time.Since(start).Seconds())

	b.logger.Info("snapshot built",
		"regions", len(reports),
		"states", len(snapshot.States),
		"skipped", len(warnings),
		"duration", time.Since(start),
	)
	return snapshot, nil
}

// computeReports derives a report per region. Regions are independent, so
// they are computed concurrently; results are written by index to keep the
// output identical to sequential execution.
func (b *Builder) computeReports(ctx context.Context, regions []domain.Region) ([]domain.RegionReport, []string) {
	reports := make([]*domain.RegionReport, len(regions))
	errs := make([]error, len(regions))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, region := range regions {
		g.Go(func() error {
			report, err := domain.BuildReport(region, b.weights, b.thresholds)
			if err != nil {
				errs[i] = fmt.Errorf("region %s: %w", region.FIPS, err)
				return nil
			}
			reports[i] = &report
			return nil
		})
	}
	_ = g.Wait() // workers report per-region failures via errs, never an error

	out := make([]domain.RegionReport, 0, len(regions))
	var warnings []string
	for i := range regions {
		if errs[i] != nil {
			b.recordSkip(errs[i])
			b.logger.Warn("region skipped", "error", errs[i])
			warnings = append(warnings, errs[i].Error())
			continue
		}
		out = append(out, *reports[i])
	}
	return out, warnings
}

func (b *Builder) loadSVI(ctx context.Context) ([]domain.SVIRow, error) {
	start := time.Now()
	rows, err := b.svi.LoadSVI(ctx)
	if err != nil {
		return nil, err
	}
	b.metrics.DatasetLoadDuration.WithLabelValues("svi").Observe(time.Since(start).Seconds())
	return rows, nil
}

func (b *Builder) loadDemographics(ctx context.Context) ([]domain.DemographicRow, error) {
	start := time.Now()
	rows, err := b.demo.LoadDemographics(ctx)
	if err != nil {
		return nil, err
	}
	b.metrics.DatasetLoadDuration.WithLabelValues("demographics").Observe(time.Since(start).Seconds())
	return rows, nil
}

// recordSkip counts an excluded region under its skip reason.
func (b *Builder) recordSkip(err error) {
	var missing *domain.MissingDataError
	if errors.As(err, &missing) {
		b.metrics.RegionsSkipped.WithLabelValues("missing_data").Inc()
		return
	}
	b.metrics.RegionsSkipped.WithLabelValues("validation").Inc()
}
