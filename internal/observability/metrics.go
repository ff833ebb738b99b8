package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "swim_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	ExtractErrors    prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Per-message outcomes.
	MessagesStored  *prometheus.CounterVec // labels: family, variant
	MessagesSkipped *prometheus.CounterVec // labels: reason={no_route,binary}
	DecodeErrors    *prometheus.CounterVec // labels: family, kind
	StoreErrors     *prometheus.CounterVec // labels: table
	DeadLettered    prometheus.Counter
	CommitErrors    prometheus.Counter

	ProcessingDuration *prometheus.HistogramVec // labels: family
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the transport.",
		}),
		ExtractErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_errors_total",
			Help:      "Total transport read failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		MessagesStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_stored_total",
			Help:      "Records written to storage by family and decoder variant.",
		}, []string{"family", "variant"}),
		MessagesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_skipped_total",
			Help:      "Messages acknowledged without decoding, by reason.",
		}, []string{"reason"}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Messages that failed to decode, by family and error kind.",
		}, []string{"family", "kind"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed storage writes by table.",
		}, []string{"table"}),
		DeadLettered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dead_lettered_total",
			Help:      "Messages published to the dead-letter sink.",
		}),
		CommitErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commit_errors_total",
			Help:      "Failed transport acknowledgements.",
		}),
		ProcessingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_processing_duration_seconds",
			Help:      "Duration of decode, normalize and store for one message.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"family"}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.MessagesConsumed,
		m.ExtractErrors,
		m.PipelineRunning,
		m.MessagesStored,
		m.MessagesSkipped,
		m.DecodeErrors,
		m.StoreErrors,
		m.DeadLettered,
		m.CommitErrors,
		m.ProcessingDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
