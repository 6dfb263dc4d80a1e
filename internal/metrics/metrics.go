// Package metrics exposes Prometheus collectors for command dispatch, worker
// concurrency and feed fetches. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
)

const namespace = "songza_enso"

// Command dispatch results.
const (
	ResultAccepted = "accepted"
	ResultUnknown  = "unknown"
	ResultRejected = "rejected"
)

// Fetch outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeTransport    = "transport"
	OutcomeStatus       = "status"
	OutcomeFormat       = "format"
	OutcomeRootMismatch = "root_mismatch"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	commands      *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	skipped       prometheus.Counter
	activeWorkers prometheus.Gauge
}

// New creates and registers all collectors, plus Go runtime and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Inbound command invocations by command and dispatch result.",
		}, []string{"command", "result"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "Feed fetch attempts by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Time spent fetching and validating one feed.",
			Buckets:   prometheus.DefBuckets,
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_entries_skipped_total",
			Help:      "Song entries dropped for a missing title or link.",
		}),
		activeWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workers",
			Help:      "Command workers currently running.",
		}),
	}
	reg.MustRegister(
		m.commands,
		m.fetches,
		m.fetchDuration,
		m.skipped,
		m.activeWorkers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CommandDispatched counts one inbound invocation.
func (m *Metrics) CommandDispatched(command, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, result).Inc()
}

// FetchCompleted records one fetch; err is the internal failure cause or nil.
func (m *Metrics) FetchCompleted(err error, took time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(Outcome(err)).Inc()
	m.fetchDuration.Observe(took.Seconds())
}

// EntriesSkipped counts malformed song entries.
func (m *Metrics) EntriesSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skipped.Add(float64(n))
}

func (m *Metrics) WorkerStarted() {
	if m == nil {
		return
	}
	m.activeWorkers.Inc()
}

func (m *Metrics) WorkerFinished() {
	if m == nil {
		return
	}
	m.activeWorkers.Dec()
}

// Outcome maps a fetch error to its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrFeedStatus):
		return OutcomeStatus
	case errors.Is(err, domain.ErrFeedRootMismatch):
		return OutcomeRootMismatch
	case errors.Is(err, domain.ErrFeedFormat):
		return OutcomeFormat
	default:
		return OutcomeTransport
	}
}
