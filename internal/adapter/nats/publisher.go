package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/swim-data-etl/internal/domain"
	natsgo "github.com/nats-io/nats.go"
)

// DeadLetterPublisher publishes failed messages to a NATS subject. It
// implements pipeline.DeadLetterSink.
type DeadLetterPublisher struct {
	conn    *natsgo.Conn
	subject string
	logger  *slog.Logger
}

func NewDeadLetterPublisher(conn *natsgo.Conn, subject string, logger *slog.Logger) *DeadLetterPublisher {
	return &DeadLetterPublisher{conn: conn, subject: subject, logger: logger}
}

// Publish forwards the original payload with the failure reason in headers.
func (p *DeadLetterPublisher) Publish(ctx context.Context, msg domain.RawMessage, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.conn.PublishMsg(deadLetterMsg(p.subject, msg, reason, time.Now())); err != nil {
		return fmt.Errorf("publish dead letter: %w", err)
	}
	p.logger.Debug("dead letter published", "subject", p.subject, "message_id", msg.CorrelationID)
	return nil
}

func deadLetterMsg(subject string, msg domain.RawMessage, reason string, failedAt time.Time) *natsgo.Msg {
	out := natsgo.NewMsg(subject)
	out.Data = msg.Payload
	out.Header.Set(HeaderDestination, msg.Destination)
	out.Header.Set(HeaderMessageID, msg.CorrelationID)
	out.Header.Set(HeaderReason, reason)
	out.Header.Set(HeaderFailedAt, failedAt.UTC().Format(time.RFC3339))
	return out
}
