package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	dynamodbadapter "github.com/couchcryptid/swim-data-etl/internal/adapter/dynamodb"
	httpadapter "github.com/couchcryptid/swim-data-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/swim-data-etl/internal/adapter/kafka"
	natsadapter "github.com/couchcryptid/swim-data-etl/internal/adapter/nats"
	opensearchadapter "github.com/couchcryptid/swim-data-etl/internal/adapter/opensearch"
	"github.com/couchcryptid/swim-data-etl/internal/config"
	"github.com/couchcryptid/swim-data-etl/internal/dispatch"
	"github.com/couchcryptid/swim-data-etl/internal/observability"
	"github.com/couchcryptid/swim-data-etl/internal/pipeline"
)

type closer struct {
	name string
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	extractor, deadLetter, closers, err := newTransport(cfg, logger)
	if err != nil {
		logger.Error("failed to initialise transport", "transport", cfg.Transport, "error", err)
		os.Exit(1)
	}

	dispatcher := dispatch.New(dispatch.Tables{
		FIXM:      cfg.FIXMTable,
		IWXXM:     cfg.IWXXMTable,
		METReport: cfg.METReportTable,
	})

	var opts []pipeline.Option
	if deadLetter != nil {
		opts = append(opts, pipeline.WithDeadLetter(deadLetter))
	}
	p := pipeline.New(extractor, dispatcher, store, logger, metrics, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, dispatcher, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close error", "component", c.name, "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageOpenSearch:
		s, err := opensearchadapter.NewStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := s.Ping(ctx); err != nil {
			return nil, err
		}
		logger.Info("opensearch storage ready", "url", cfg.OpenSearchURL)
		return s, nil
	case config.StorageDynamoDB:
		s, err := dynamodbadapter.NewStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("dynamodb storage ready", "region", cfg.AWSRegion, "endpoint", cfg.DynamoDBEndpoint)
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func newTransport(cfg *config.Config, logger *slog.Logger) (pipeline.Extractor, pipeline.DeadLetterSink, []closer, error) {
	switch cfg.Transport {
	case config.TransportNATS:
		conn, err := natsadapter.Connect(cfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		sub, err := natsadapter.NewSubscriber(conn, cfg, logger)
		if err != nil {
			conn.Close()
			return nil, nil, nil, err
		}
		closers := []closer{{"nats subscriber", sub}}
		var sink pipeline.DeadLetterSink
		if cfg.NATSDLQSubject != "" {
			sink = natsadapter.NewDeadLetterPublisher(conn, cfg.NATSDLQSubject, logger)
		}
		closers = append(closers, closer{"nats connection", closeFunc(func() error { return conn.Drain() })})
		return sub, sink, closers, nil
	case config.TransportKafka:
		reader := kafkaadapter.NewReader(cfg, logger)
		closers := []closer{{"kafka reader", reader}}
		if cfg.KafkaDLQTopic == "" {
			return reader, nil, closers, nil
		}
		writer := kafkaadapter.NewDeadLetterWriter(cfg, logger)
		closers = append(closers, closer{"kafka dead letter writer", writer})
		return reader, writer, closers, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }
