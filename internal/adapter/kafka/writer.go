// Package kafka publishes computed region reports to a sink topic after each
// snapshot build. Publication is batch, once per refresh, and optional:
// downstream dashboards that prefer polling the HTTP API can leave it off.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/elder-vulnerability-index/internal/config"
	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
)

// Writer produces region reports to the configured sink topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishReports serializes and publishes a snapshot's region reports in a
// single WriteMessages call.
func (w *Writer) PublishReports(ctx context.Context, reports []domain.RegionReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a RegionReport into a Kafka message keyed by
// FIPS so downstream consumers compact per county.
func serializeToMessage(report domain.RegionReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize region report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.FIPS),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "tier", Value: []byte(report.Tier)},
			{Key: "computed_at", Value: []byte(report.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}
