// Package nats consumes SWIM messages from a NATS subject and publishes dead
// letters back to NATS. Core NATS delivers at most once, so messages carry no
// commit function.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/couchcryptid/swim-data-etl/internal/config"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	natsgo "github.com/nats-io/nats.go"
)

// Headers read from source messages and written to dead letters.
const (
	HeaderMessageID   = "Nats-Msg-Id"
	HeaderDestination = "Destination"
	HeaderReason      = "Dlq-Reason"
	HeaderFailedAt    = "Failed-At"
)

// Subscriber pulls messages from a queue subscription. It implements
// pipeline.Extractor.
type Subscriber struct {
	conn   *natsgo.Conn
	sub    *natsgo.Subscription
	clock  clockwork.Clock
	logger *slog.Logger
}

// Connect dials NATS with reconnects enabled.
func Connect(cfg *config.Config, logger *slog.Logger) (*natsgo.Conn, error) {
	opts := []natsgo.Option{
		natsgo.Name("swim-data-etl"),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.Timeout(5 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	}
	if cfg.NATSUsername != "" && cfg.NATSPassword != "" {
		opts = append(opts, natsgo.UserInfo(cfg.NATSUsername, cfg.NATSPassword))
	}

	conn, err := natsgo.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return conn, nil
}

// NewSubscriber joins the configured queue group on the configured subject.
func NewSubscriber(conn *natsgo.Conn, cfg *config.Config, logger *slog.Logger) (*Subscriber, error) {
	sub, err := conn.QueueSubscribeSync(cfg.NATSSubject, cfg.NATSQueue)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", cfg.NATSSubject, err)
	}
	logger.Info("nats subscribed", "subject", cfg.NATSSubject, "queue", cfg.NATSQueue)
	return &Subscriber{conn: conn, sub: sub, clock: clockwork.NewRealClock(), logger: logger}, nil
}

// Extract blocks until the next message arrives or ctx is done.
func (s *Subscriber) Extract(ctx context.Context) (domain.RawMessage, error) {
	msg, err := s.sub.NextMsgWithContext(ctx)
	if err != nil {
		return domain.RawMessage{}, fmt.Errorf("next nats message: %w", err)
	}
	return mapMsg(msg, s.clock.Now()), nil
}

// Close drains the subscription.
func (s *Subscriber) Close() error {
	return s.sub.Drain()
}

// mapMsg converts a NATS message. The subject is the destination tag unless
// a Destination header overrides it; messages without an id get a fresh UUID.
func mapMsg(msg *natsgo.Msg, receivedAt time.Time) domain.RawMessage {
	destination := msg.Header.Get(HeaderDestination)
	if destination == "" {
		destination = msg.Subject
	}
	id := msg.Header.Get(HeaderMessageID)
	if id == "" {
		id = uuid.NewString()
	}

	return domain.RawMessage{
		Payload:       msg.Data,
		Binary:        !utf8.Valid(msg.Data),
		Destination:   destination,
		CorrelationID: id,
		ReceivedAt:    receivedAt,
		Source:        msg.Subject,
	}
}
