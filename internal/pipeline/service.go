package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
	"github.com/couchcryptid/elder-vulnerability-index/internal/observability"
)

// ReportPublisher delivers a snapshot's region reports downstream.
type ReportPublisher interface {
	PublishReports(ctx context.Context, reports []domain.RegionReport) error
}

// Service owns the current snapshot and rebuilds it on a fixed interval.
// Readers always see the last successfully built snapshot; a failed rebuild
// keeps the previous one in service.
type Service struct {
	builder   *Builder
	publisher ReportPublisher // nil when publication is disabled
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	snapshot  atomic.Pointer[domain.IndexSnapshot]
}

// NewService creates a Service. Pass a nil publisher to disable report
// publication.
func NewService(builder *Builder, publisher ReportPublisher, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		builder:   builder,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// Current returns the snapshot being served, or nil before the first
// successful build.
func (s *Service) Current() *domain.IndexSnapshot {
	return s.snapshot.Load()
}

// CheckReadiness returns nil once a snapshot has been built.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.snapshot.Load() == nil {
		return errors.New("no index snapshot built yet")
	}
	return nil
}

// Refresh builds a fresh snapshot, swaps it in, and publishes the reports if
// a publisher is configured. Publication is best effort: a failure leaves
// the new snapshot in service.
func (s *Service) Refresh(ctx context.Context) error {
	snapshot, err := s.builder.Build(ctx)
	if err != nil {
		return err
	}
	s.snapshot.Store(snapshot)

	if s.publisher != nil {
		if err := s.publisher.PublishReports(ctx, snapshot.Regions); err != nil {
			s.logger.Warn("publish reports failed", "error", err, "regions", len(snapshot.Regions))
			s.metrics.PublishErrors.Inc()
		} else {
			s.metrics.ReportsPublished.Add(float64(len(snapshot.Regions)))
		}
	}
	return nil
}

// Run executes the build-and-serve loop until the context is cancelled.
// Failed builds retry with exponential backoff; successful builds wait out
// the refresh interval.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("refresh loop started", "interval", s.interval)
	s.metrics.RefreshRunning.Set(1)
	defer s.metrics.RefreshRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops when a source
	// table is unavailable.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		if err := s.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				s.logger.Info("refresh loop stopping", "reason", ctx.Err())
				return nil
			}
			s.logger.Error("snapshot build failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		if !sleepWithContext(ctx, s.interval) {
			s.logger.Info("refresh loop stopping", "reason", ctx.Err())
			return nil
		}
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
