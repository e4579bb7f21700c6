package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/jma-forecast/internal/config"
	"github.com/couchcryptid/jma-forecast/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

const batchTimeout = 10 * time.Millisecond

// Writer publishes forecast-refreshed events to a Kafka topic.
// It implements domain.EventPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           batchTimeout, // one message per call
	}
	return &Writer{writer: w, logger: logger}
}

// PublishRefreshed writes one message keyed by area code, so all events for an
// area land on the same partition in order.
func (w *Writer) PublishRefreshed(ctx context.Context, event domain.ForecastRefreshed) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish forecast event for %s: %w", event.AreaCode, err)
	}
	w.logger.Debug("forecast event published", "area_code", event.AreaCode, "entries", len(event.Entries))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ForecastRefreshed event into a Kafka message.
func serializeToMessage(event domain.ForecastRefreshed) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.AreaCode),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "area_code", Value: []byte(event.AreaCode)},
			{Key: "refreshed_at", Value: []byte(event.RefreshedAt.Format(time.RFC3339))},
		},
	}, nil
}
