package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

// Metrics holds every collector the service exports. A nil *Metrics is
// valid and records nothing, so callers never need to guard.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	recommendations        *prometheus.CounterVec
	recommendationFailures prometheus.Counter
	quotaRejections        *prometheus.CounterVec

	llmLatency       *prometheus.HistogramVec
	llmRequests      *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	vectorLatency    *prometheus.HistogramVec
	breakerState     *prometheus.GaugeVec
	profileRefreshes *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Current() *Metrics {
	return instance
}

// Init builds the process-wide collectors once.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

// New builds an isolated set of collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "HTTP requests currently being served",
		}),

		recommendations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_outcomes_total",
			Help: "Recommendation requests by need and outcome",
		}, []string{"needs", "outcome"}),
		recommendationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "recommendation_failures_total",
			Help: "Recommendation requests that produced no candidate or errored",
		}),
		quotaRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quota_rejections_total",
			Help: "Requests rejected because the daily quota was exhausted",
		}, []string{"needs"}),

		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llm_latency_seconds",
			Help:    "Latency of language model calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		}, []string{"operation", "status"}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Language model calls by operation and status",
		}, []string{"operation", "status"}),
		upstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Calls to external services by service and status",
		}, []string{"service", "status"}),
		vectorLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vector_store_latency_seconds",
			Help:    "Vector store call latency by operation and status",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation", "status"}),
		breakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),
		profileRefreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "behavior_profile_refresh_total",
			Help: "Behavior profile refresh attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveRecommendation records one orchestrator outcome. Anything other
// than "success" or "quota_exhausted" also bumps the failure counter.
func (m *Metrics) ObserveRecommendation(needs, outcome string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(needs, outcome).Inc()
	switch outcome {
	case "success":
	case "quota_exhausted":
		m.quotaRejections.WithLabelValues(needs).Inc()
	default:
		m.recommendationFailures.Inc()
	}
}

func (m *Metrics) ObserveLLM(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(operation, status).Observe(dur.Seconds())
	m.llmRequests.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) IncUpstream(service, status string) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(service, status).Inc()
}

// ObserveVectorStore records one vector store call; it also counts as an
// upstream request to pinecone.
func (m *Metrics) ObserveVectorStore(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.vectorLatency.WithLabelValues(operation, status).Observe(dur.Seconds())
	m.upstreamRequests.WithLabelValues("pinecone", status).Inc()
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(state)
}

func (m *Metrics) IncProfileRefresh(outcome string) {
	if m == nil {
		return
	}
	m.profileRefreshes.WithLabelValues(outcome).Inc()
}
