package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "journal"

// PrometheusRecorder exposes the Recorder events as Prometheus collectors on
// its own registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	usersSynced   prometheus.Counter
	identityCache *prometheus.CounterVec
	entries       *prometheus.CounterVec
	rateLimited   prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheus creates a recorder with process and Go runtime collectors
// registered alongside the application metrics.
func NewPrometheus() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		usersSynced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "users_synced_total",
			Help:      "Identity sync calls that ensured a local user.",
		}),
		identityCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "cache_lookups_total",
			Help:      "Identity cache lookups by result.",
		}, []string{"result"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entries",
			Name:      "writes_total",
			Help:      "Entry writes by operation.",
		}, []string{"op"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-user rate limiter.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
	}

	p.registry.MustRegister(
		p.usersSynced,
		p.identityCache,
		p.entries,
		p.rateLimited,
		p.httpRequests,
		p.httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return p
}

// Gatherer returns the registry backing this recorder.
func (p *PrometheusRecorder) Gatherer() prometheus.Gatherer {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// IncUserSynced increments the synced user counter.
func (p *PrometheusRecorder) IncUserSynced() { p.usersSynced.Inc() }

// IncIdentityCacheHit increments cache hit counter.
func (p *PrometheusRecorder) IncIdentityCacheHit() { p.identityCache.WithLabelValues("hit").Inc() }

// IncIdentityCacheMiss increments cache miss counter.
func (p *PrometheusRecorder) IncIdentityCacheMiss() { p.identityCache.WithLabelValues("miss").Inc() }

// IncEntryCreated increments entry created counter.
func (p *PrometheusRecorder) IncEntryCreated() { p.entries.WithLabelValues("create").Inc() }

// IncEntryUpdated increments entry updated counter.
func (p *PrometheusRecorder) IncEntryUpdated() { p.entries.WithLabelValues("update").Inc() }

// IncRateLimited increments the rejected request counter.
func (p *PrometheusRecorder) IncRateLimited() { p.rateLimited.Inc() }

// ObserveHTTPRequest records one served request. route must be the matched
// pattern, not the raw path, to keep label cardinality bounded.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
