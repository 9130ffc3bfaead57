package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusExporter exports metrics to Prometheus format.
type PrometheusExporter struct {
	collector *Collector

	// Prometheus metrics
	decisions        *prometheus.CounterVec
	filteredObjects  *prometheus.CounterVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cacheHitRate     prometheus.Gauge
	cacheKeys        prometheus.Gauge
	cacheMemoryBytes prometheus.Gauge
	cacheEvictions   prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpErrors       *prometheus.CounterVec
}

// NewPrometheusExporter creates a new Prometheus exporter.
func NewPrometheusExporter(collector *Collector) *PrometheusExporter {
	return &PrometheusExporter{
		collector: collector,
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monban_authorization_decisions_total",
				Help: "Total number of authorization decisions",
			},
			[]string{"resource", "action", "decision"},
		),
		filteredObjects: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monban_filtered_objects_total",
				Help: "Total number of objects dropped from collection results by post-checks",
			},
			[]string{"resource"},
		),
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monban_object_cache_hits_total",
			Help: "Total number of object cache hits during identifier resolution",
		}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monban_object_cache_misses_total",
			Help: "Total number of object cache misses during identifier resolution",
		}),
		cacheHitRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "monban_object_cache_hit_rate",
			Help: "Current object cache hit rate (0.0 to 1.0)",
		}),
		cacheKeys: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "monban_object_cache_keys_current",
			Help: "Current number of keys in the object cache",
		}),
		cacheMemoryBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "monban_object_cache_memory_bytes",
			Help: "Current approximate memory usage of the object cache in bytes",
		}),
		cacheEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monban_object_cache_evictions_total",
			Help: "Total number of object cache evictions due to memory limits",
		}),
		httpRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monban_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route"},
		),
		httpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "monban_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
			[]string{"method", "route"},
		),
		httpErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monban_http_errors_total",
				Help: "Total number of HTTP error responses",
			},
			[]string{"method", "route"},
		),
	}
}

// Update updates Gauge metrics from the collector.
// Counters are updated inline, so only gauges are refreshed here.
// This should be called periodically (e.g., every 10 seconds).
func (e *PrometheusExporter) Update() {
	cacheMetrics := e.collector.GetCacheMetrics()
	e.cacheHitRate.Set(cacheMetrics.HitRate)
	e.cacheKeys.Set(float64(cacheMetrics.KeysCurrent))
	e.cacheMemoryBytes.Set(float64(cacheMetrics.MemoryBytes))
}

// RecordDecision records one authorization decision.
func (e *PrometheusExporter) RecordDecision(resource, action string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	if action == "" {
		action = "*"
	}
	e.decisions.WithLabelValues(resource, action, decision).Inc()
}

// RecordFiltered records elements dropped from a collection result.
func (e *PrometheusExporter) RecordFiltered(resource string, removed int) {
	if removed <= 0 {
		return
	}
	e.filteredObjects.WithLabelValues(resource).Add(float64(removed))
}

// RecordRequest records a request in Prometheus.
func (e *PrometheusExporter) RecordRequest(method, route string) {
	e.httpRequests.WithLabelValues(method, route).Inc()
}

// RecordDuration records a duration in Prometheus.
func (e *PrometheusExporter) RecordDuration(method, route string, durationSeconds float64) {
	e.httpDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordError records an error in Prometheus.
func (e *PrometheusExporter) RecordError(method, route string) {
	e.httpErrors.WithLabelValues(method, route).Inc()
}

// RecordCacheHit records an object cache hit.
func (e *PrometheusExporter) RecordCacheHit() {
	e.cacheHits.Inc()
}

// RecordCacheMiss records an object cache miss.
func (e *PrometheusExporter) RecordCacheMiss() {
	e.cacheMisses.Inc()
}

// RecordCacheEviction records an object cache eviction.
func (e *PrometheusExporter) RecordCacheEviction() {
	e.cacheEvictions.Inc()
}
