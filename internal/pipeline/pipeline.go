package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
	"github.com/couchcryptid/swim-data-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Extractor blocks until the next message is available.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawMessage, error)
}

// Transformer decodes and normalizes one message into a storage record.
type Transformer interface {
	Transform(ctx context.Context, msg domain.RawMessage) (domain.Record, error)
}

// Store persists one record into the named table.
type Store interface {
	Put(ctx context.Context, table string, record domain.Tree) error
}

// DeadLetterSink receives messages that failed to decode or store.
type DeadLetterSink interface {
	Publish(ctx context.Context, msg domain.RawMessage, reason string) error
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithDeadLetter routes failed messages to sink.
func WithDeadLetter(sink DeadLetterSink) Option {
	return func(p *Pipeline) { p.deadLetter = sink }
}

// WithClock replaces the clock used for backoff and timing.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// Pipeline runs the extract, transform, store, commit loop one message at a time.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	store       Store
	deadLetter  DeadLetterSink
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, s Store, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		store:       s,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once the pipeline has stored at least one record,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not stored any records yet")
	}
	return nil
}

// Ready reports whether at least one record has been stored.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Run processes messages until the context is cancelled. A single message
// never stops the loop: decode and store failures are logged, counted and
// acknowledged.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "dead_letter", p.deadLetter != nil)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		msg, err := p.extractor.Extract(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.metrics.ExtractErrors.Inc()
			p.logger.Error("extract failed", "error", err, "retry_in", backoff)
			if !p.sleep(ctx, backoff) {
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = initialBackoff
		p.metrics.MessagesConsumed.Inc()
		p.process(ctx, msg)
	}
}

// process handles one message end to end and always acknowledges it.
func (p *Pipeline) process(ctx context.Context, msg domain.RawMessage) {
	start := p.clock.Now()
	log := p.logger.With(
		"destination", msg.Destination,
		"message_id", msg.CorrelationID,
		"source", msg.Source,
		"partition", msg.Partition,
		"offset", msg.Offset,
	)

	rec, err := p.transformer.Transform(ctx, msg)
	switch {
	case err == nil:
		p.put(ctx, log, msg, rec)
	case domain.IsSkip(err):
		log.Info("message skipped", "reason", err)
		p.metrics.MessagesSkipped.WithLabelValues(skipReason(err)).Inc()
	default:
		log.Warn("decode failed, skipping message", "family", rec.Family, "error", err)
		p.metrics.DecodeErrors.WithLabelValues(familyLabel(rec.Family), errorKind(err)).Inc()
		p.publishDeadLetter(ctx, log, msg, err)
	}

	p.metrics.ProcessingDuration.WithLabelValues(familyLabel(rec.Family)).Observe(p.clock.Since(start).Seconds())
	p.commit(ctx, log, msg)
}

func (p *Pipeline) put(ctx context.Context, log *slog.Logger, msg domain.RawMessage, rec domain.Record) {
	if err := p.store.Put(ctx, rec.Table, rec.Item); err != nil {
		log.Error("store failed", "table", rec.Table, "family", rec.Family, "error", err)
		p.metrics.StoreErrors.WithLabelValues(rec.Table).Inc()
		p.publishDeadLetter(ctx, log, msg, err)
		return
	}
	log.Debug("record stored", "table", rec.Table, "family", rec.Family, "variant", rec.Variant)
	p.metrics.MessagesStored.WithLabelValues(rec.Family, rec.Variant).Inc()
	p.ready.Store(true)
}

func (p *Pipeline) publishDeadLetter(ctx context.Context, log *slog.Logger, msg domain.RawMessage, cause error) {
	if p.deadLetter == nil {
		return
	}
	if err := p.deadLetter.Publish(ctx, msg, cause.Error()); err != nil {
		log.Error("dead letter publish failed", "error", err)
		return
	}
	p.metrics.DeadLettered.Inc()
}

// commit acknowledges the message if the transport supports it.
func (p *Pipeline) commit(ctx context.Context, log *slog.Logger, msg domain.RawMessage) {
	if msg.Commit == nil {
		return
	}
	if err := msg.Commit(ctx); err != nil {
		log.Warn("commit failed", "error", err)
		p.metrics.CommitErrors.Inc()
	}
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.clock.After(d):
		return true
	}
}

func skipReason(err error) string {
	if errors.Is(err, domain.ErrBinaryPayload) {
		return "binary"
	}
	return "no_route"
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrParse):
		return "parse"
	case errors.Is(err, domain.ErrMissingField):
		return "missing_field"
	case errors.Is(err, domain.ErrUnrecognizedFormat):
		return "unrecognized_format"
	case errors.Is(err, domain.ErrSerialization):
		return "serialization"
	default:
		return "other"
	}
}

func familyLabel(family string) string {
	if family == "" {
		return "unknown"
	}
	return family
}
