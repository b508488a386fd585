package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
)

// Writer publishes render records to the journal topic.
// It implements pipeline.Journal.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured journal topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaJournalTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Record serializes and publishes one render record, keyed by period so a
// session's records for a period stay ordered on one partition.
func (w *Writer) Record(ctx context.Context, rec domain.RenderRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write render record: %w", err)
	}
	w.logger.Debug("render record published", "topic", w.writer.Topic, "period", rec.Selection.Period)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a RenderRecord into a Kafka message.
func serializeToMessage(rec domain.RenderRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize render record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Selection.Period),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "variant", Value: []byte(rec.Variant)},
			{Key: "rendered_at", Value: []byte(rec.RenderedAt.Format(time.RFC3339))},
		},
	}, nil
}
