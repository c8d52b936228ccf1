package observability

import (
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/pulseboard-backend/internal/platform/envutil"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

const namespace = "pulseboard"

// Metrics owns a private registry so tests can build as many as they like.
// Every method is safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	trainingRuns     *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	trainingSamples  prometheus.Histogram
	postsScored      prometheus.Counter

	validationFailures *prometheus.CounterVec
	sseDropped         *prometheus.CounterVec
	sseClients         prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool { return envutil.Bool("METRICS_ENABLED", true) }

// Current returns the process-wide instance, or nil before Init.
func Current() *Metrics { return instance }

// Init builds the process-wide instance once.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "HTTP requests by method, route, status and response code (validation_failed, empty, training_in_progress, ...).",
		}, []string{"method", "route", "status", "code"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_inflight_requests",
			Help:      "Requests currently being served.",
		}),
		trainingRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engagement_training_runs_total",
			Help:      "Engagement model training runs by outcome (success, empty, error, conflict).",
		}, []string{"outcome"}),
		trainingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engagement_training_duration_seconds",
			Help:      "Wall time of a training run.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		trainingSamples: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engagement_training_samples",
			Help:      "Posts used per successful training run.",
			Buckets:   []float64{3, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		postsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_scored_total",
			Help:      "Scheduled posts whose AI fields were written back.",
		}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected documents by entity.",
		}, []string{"entity"}),
		sseDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sse_dropped_messages_total",
			Help:      "SSE messages dropped on a full client buffer.",
		}, []string{"event"}),
		sseClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sse_clients",
			Help:      "Connected SSE streams.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.trainingRuns, m.trainingDuration, m.trainingSamples, m.postsScored,
		m.validationFailures, m.sseDropped, m.sseClients,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterDB exports connection pool stats for sqlDB.
func (m *Metrics) RegisterDB(sqlDB *sql.DB, name string) error {
	if m == nil || sqlDB == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(sqlDB, name))
}

// ObserveAPI counts one request. code is the error or empty-result code the
// handler replied with, "" when it succeeded. A negative dur skips the
// latency histogram.
func (m *Metrics) ObserveAPI(method, route, status, code string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	if code == "" {
		code = "ok"
	}
	m.apiRequests.WithLabelValues(method, route, status, code).Inc()
	if dur >= 0 {
		m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveTraining(outcome string, samples int, dur time.Duration) {
	if m == nil {
		return
	}
	m.trainingRuns.WithLabelValues(outcome).Inc()
	m.trainingDuration.Observe(dur.Seconds())
	if outcome == "success" {
		m.trainingSamples.Observe(float64(samples))
	}
}

func (m *Metrics) AddPostsScored(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.postsScored.Add(float64(n))
}

func (m *Metrics) IncValidationFailure(entity string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(entity).Inc()
}

func (m *Metrics) IncSSEDropped(event string) {
	if m == nil {
		return
	}
	m.sseDropped.WithLabelValues(event).Inc()
}

func (m *Metrics) SSEClientConnected() {
	if m == nil {
		return
	}
	m.sseClients.Inc()
}

func (m *Metrics) SSEClientDisconnected() {
	if m == nil {
		return
	}
	m.sseClients.Dec()
}
