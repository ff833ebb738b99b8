package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxDecodeBody = 4 << 20

// Transformer decodes one message the same way the pipeline does.
type Transformer interface {
	Transform(ctx context.Context, msg domain.RawMessage) (domain.Record, error)
}

// Server exposes health, readiness, metrics and decode-preview HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics routes.
// When transformer is non-nil, POST /decode runs a payload through it without
// storing anything.
func NewServer(addr string, ready sharedobs.ReadinessChecker, transformer Transformer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if transformer != nil {
		mux.HandleFunc("POST /decode", s.handleDecode(transformer))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type decodeResponse struct {
	Table   string      `json:"table"`
	Family  string      `json:"family"`
	Variant string      `json:"variant"`
	Item    domain.Tree `json:"item"`
}

// handleDecode reads the destination tag from the "destination" query
// parameter and the message id from "message_id".
func (s *Server) handleDecode(t Transformer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		destination := r.URL.Query().Get("destination")
		if destination == "" {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "destination query parameter is required"})
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxDecodeBody))
		if err != nil {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		rec, err := t.Transform(r.Context(), domain.RawMessage{
			Payload:       payload,
			Destination:   destination,
			CorrelationID: r.URL.Query().Get("message_id"),
			ReceivedAt:    time.Now(),
			Source:        "http",
		})
		if err != nil {
			s.logger.Debug("decode preview failed", "destination", destination, "error", err)
			sharedobs.WriteJSON(w, decodeStatus(err), map[string]string{"error": err.Error()})
			return
		}

		sharedobs.WriteJSON(w, http.StatusOK, decodeResponse{
			Table:   rec.Table,
			Family:  rec.Family,
			Variant: rec.Variant,
			Item:    rec.Item,
		})
	}
}

func decodeStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoRoute), errors.Is(err, domain.ErrUnrecognizedFormat):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBinaryPayload):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusUnprocessableEntity
	}
}
