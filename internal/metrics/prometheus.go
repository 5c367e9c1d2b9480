package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dandi"

// PrometheusRecorder implements Recorder on a dedicated Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	keyOps          *prometheus.CounterVec
	validations     *prometheus.CounterVec
	validationCache *prometheus.CounterVec
	readmeFetch     *prometheus.HistogramVec
	summarize       *prometheus.HistogramVec
	httpRequests    *prometheus.HistogramVec
}

// NewPrometheus creates a recorder and registers its collectors.
// A nil registry gets a fresh one with Go and process collectors.
func NewPrometheus(registry *prometheus.Registry) *PrometheusRecorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	p := &PrometheusRecorder{
		registry: registry,
		keyOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_key_operations_total",
			Help:      "API key management operations by type.",
		}, []string{"operation"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_key_validations_total",
			Help:      "API key validations by result.",
		}, []string{"result"}),
		validationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_cache_lookups_total",
			Help:      "Validation cache lookups by result.",
		}, []string{"result"}),
		readmeFetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "readme_fetch_duration_seconds",
			Help:      "README fetch latency by status.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"status"}),
		summarize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summarize_duration_seconds",
			Help:      "Language model call latency by provider and status.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider", "status"}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}

	registry.MustRegister(
		p.keyOps,
		p.validations,
		p.validationCache,
		p.readmeFetch,
		p.summarize,
		p.httpRequests,
	)

	return p
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// IncKeyGenerated counts a generated key.
func (p *PrometheusRecorder) IncKeyGenerated() {
	p.keyOps.WithLabelValues("generate").Inc()
}

// IncKeyRenamed counts a renamed key.
func (p *PrometheusRecorder) IncKeyRenamed() {
	p.keyOps.WithLabelValues("rename").Inc()
}

// IncKeyRevoked counts a revoked key.
func (p *PrometheusRecorder) IncKeyRevoked() {
	p.keyOps.WithLabelValues("revoke").Inc()
}

// IncKeyValidation counts a validation outcome.
func (p *PrometheusRecorder) IncKeyValidation(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	p.validations.WithLabelValues(result).Inc()
}

// IncValidationCacheHit counts a cache hit.
func (p *PrometheusRecorder) IncValidationCacheHit() {
	p.validationCache.WithLabelValues("hit").Inc()
}

// IncValidationCacheMiss counts a cache miss.
func (p *PrometheusRecorder) IncValidationCacheMiss() {
	p.validationCache.WithLabelValues("miss").Inc()
}

// ObserveReadmeFetch records README fetch latency.
func (p *PrometheusRecorder) ObserveReadmeFetch(status string, duration time.Duration) {
	p.readmeFetch.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveSummarize records model call latency.
func (p *PrometheusRecorder) ObserveSummarize(provider, status string, duration time.Duration) {
	p.summarize.WithLabelValues(provider, status).Observe(duration.Seconds())
}

// ObserveHTTPRequest records request latency. route is the matched pattern, not the raw path.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
