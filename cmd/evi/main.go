package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/elder-vulnerability-index/internal/adapter/cdc"
	"github.com/couchcryptid/elder-vulnerability-index/internal/adapter/dataset"
	httpadapter "github.com/couchcryptid/elder-vulnerability-index/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/elder-vulnerability-index/internal/adapter/kafka"
	"github.com/couchcryptid/elder-vulnerability-index/internal/config"
	"github.com/couchcryptid/elder-vulnerability-index/internal/observability"
	"github.com/couchcryptid/elder-vulnerability-index/internal/pipeline"
)

func main() {
	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// SVI source: local file by default, HTTP download when a URL is set.
	var sviSource pipeline.SVISource
	if cfg.SVIDatasetURL != "" {
		sviSource = cdc.NewClient(cfg.SVIDatasetURL, cfg.SVIFetchTimeout, logger)
		logger.Info("svi source configured", "mode", "http", "url", cfg.SVIDatasetURL)
	} else {
		sviSource = dataset.FileSVISource{Path: cfg.SVIDatasetPath}
		logger.Info("svi source configured", "mode", "file", "path", cfg.SVIDatasetPath)
	}
	demoSource := dataset.FileDemographicsSource{Path: cfg.DemographicsDatasetPath}

	// Report publication (feature-flagged via KAFKA_ENABLED).
	var publisher pipeline.ReportPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("report publication enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("report publication disabled")
	}

	builder := pipeline.NewBuilder(sviSource, demoSource, cfg.IndexWeights(), cfg.TierThresholds(), logger, metrics)
	service := pipeline.NewService(builder, publisher, cfg.RefreshInterval, logger, metrics)

	srv := httpadapter.NewServer(cfg, service, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the build-and-refresh loop.
	go func() {
		if err := service.Run(ctx); err != nil {
			logger.Error("refresh loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
