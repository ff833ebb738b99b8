package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/couchcryptid/swim-data-etl/internal/config"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Headers read from source messages and written to dead letters.
const (
	HeaderDestination   = "destination"
	HeaderMessageID     = "message_id"
	HeaderCorrelationID = "correlation_id"
	HeaderContentType   = "content_type"
)

// Reader consumes the configured source topics as one consumer group.
// It implements pipeline.Extractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topics.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     cfg.KafkaGroupID,
		GroupTopics: cfg.KafkaSourceTopics,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return &Reader{reader: r, logger: logger}
}

// Extract blocks until the next message arrives. Offsets are committed only
// through the returned message's Commit function.
func (r *Reader) Extract(ctx context.Context) (domain.RawMessage, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return domain.RawMessage{}, fmt.Errorf("fetch kafka message: %w", err)
	}

	raw := mapMessage(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessage converts a Kafka message. The destination tag is the
// destination header when present, otherwise the topic.
func mapMessage(msg kafkago.Message) domain.RawMessage {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	destination := headers[HeaderDestination]
	if destination == "" {
		destination = msg.Topic
	}

	id := headers[HeaderMessageID]
	if id == "" {
		id = headers[HeaderCorrelationID]
	}
	if id == "" {
		id = fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	}

	return domain.RawMessage{
		Payload:       msg.Value,
		Binary:        isBinary(headers[HeaderContentType], msg.Value),
		Destination:   destination,
		CorrelationID: id,
		ReceivedAt:    msg.Time,
		Source:        msg.Topic,
		Partition:     msg.Partition,
		Offset:        msg.Offset,
	}
}

// isBinary reports whether a payload cannot be treated as text: either its
// declared content type is not textual or the bytes are not valid UTF-8.
func isBinary(contentType string, payload []byte) bool {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && !textual(mediaType) {
			return true
		}
	}
	return !utf8.Valid(payload)
}

func textual(mediaType string) bool {
	return strings.HasPrefix(mediaType, "text/") ||
		strings.HasSuffix(mediaType, "/xml") || strings.HasSuffix(mediaType, "+xml") ||
		strings.HasSuffix(mediaType, "/json") || strings.HasSuffix(mediaType, "+json")
}
