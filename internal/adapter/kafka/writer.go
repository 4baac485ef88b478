package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces one message per derived view to a Kafka topic.
// It implements pipeline.ViewPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured views topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaViewsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishViews serializes every named view and publishes them in a single
// WriteMessages call. Messages are keyed by view name so a compacted topic
// keeps the latest run of each view.
func (w *Writer) PublishViews(ctx context.Context, views *domain.Views) error {
	msgs, err := viewMessages(views)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write views: %w", err)
	}
	w.logger.Info("views published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

func viewMessages(views *domain.Views) ([]kafkago.Message, error) {
	names := domain.ViewNames()
	msgs := make([]kafkago.Message, 0, len(names))
	for _, name := range names {
		payload, _ := views.Named(name)
		msg, err := serializeToMessage(name, payload, views.GeneratedAt)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// serializeToMessage marshals one view into a Kafka message.
func serializeToMessage(name string, payload any, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s view: %w", name, err)
	}
	return kafkago.Message{
		Key:   []byte(name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "view", Value: []byte(name)},
			{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
