package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics exposes comparison tool metrics (e.g. Prometheus handler).
type Metrics interface {
	HTTPHandler() http.Handler
	ObserveProviderCall(provider, outcome string, elapsed time.Duration)
	ObserveLogin(outcome string)
}

// PrometheusMetrics records into its own registry so tests can create as many
// instances as they like.
type PrometheusMetrics struct {
	registry        *prometheus.Registry
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	logins          *prometheus.CounterVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llm_compare",
			Name:      "provider_calls_total",
			Help:      "Provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "llm_compare",
			Name:      "provider_call_duration_seconds",
			Help:      "Provider call latency by provider and outcome.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"provider", "outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llm_compare",
			Name:      "login_attempts_total",
			Help:      "Password gate attempts by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.providerCalls,
		m.providerLatency,
		m.logins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *PrometheusMetrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *PrometheusMetrics) ObserveProviderCall(provider, outcome string, elapsed time.Duration) {
	m.providerCalls.WithLabelValues(provider, outcome).Inc()
	m.providerLatency.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
}

func (m *PrometheusMetrics) ObserveLogin(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

// Registry returns the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// NoopMetrics is used when metrics are disabled.
type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (m *NoopMetrics) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func (m *NoopMetrics) ObserveProviderCall(string, string, time.Duration) {}

func (m *NoopMetrics) ObserveLogin(string) {}

// New returns Prometheus metrics when enabled, otherwise a no-op.
func New(enabled bool) Metrics {
	if enabled {
		return NewPrometheusMetrics()
	}
	return NewNoopMetrics()
}
