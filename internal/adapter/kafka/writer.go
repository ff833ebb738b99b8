package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/swim-data-etl/internal/config"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Dead-letter headers.
const (
	HeaderReason       = "dlq_reason"
	HeaderSourceTopic  = "source_topic"
	HeaderSourceOffset = "source_offset"
	HeaderFailedAt     = "failed_at"
)

// DeadLetterWriter produces failed messages to the dead-letter topic.
// It implements pipeline.DeadLetterSink.
type DeadLetterWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewDeadLetterWriter creates a Kafka producer for the configured DLQ topic.
func NewDeadLetterWriter(cfg *config.Config, logger *slog.Logger) *DeadLetterWriter {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaDLQTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &DeadLetterWriter{writer: w, logger: logger}
}

// Publish writes the original payload with headers describing the failure.
func (w *DeadLetterWriter) Publish(ctx context.Context, msg domain.RawMessage, reason string) error {
	if err := w.writer.WriteMessages(ctx, deadLetterMessage(msg, reason, time.Now())); err != nil {
		return fmt.Errorf("publish dead letter: %w", err)
	}
	w.logger.Debug("dead letter published", "destination", msg.Destination, "message_id", msg.CorrelationID)
	return nil
}

func (w *DeadLetterWriter) Close() error {
	return w.writer.Close()
}

func deadLetterMessage(msg domain.RawMessage, reason string, failedAt time.Time) kafkago.Message {
	return kafkago.Message{
		Key:   []byte(msg.CorrelationID),
		Value: msg.Payload,
		Headers: []kafkago.Header{
			{Key: HeaderDestination, Value: []byte(msg.Destination)},
			{Key: HeaderMessageID, Value: []byte(msg.CorrelationID)},
			{Key: HeaderReason, Value: []byte(reason)},
			{Key: HeaderSourceTopic, Value: []byte(msg.Source)},
			{Key: HeaderSourceOffset, Value: []byte(fmt.Sprintf("%d/%d", msg.Partition, msg.Offset))},
			{Key: HeaderFailedAt, Value: []byte(failedAt.UTC().Format(time.RFC3339))},
		},
	}
}
