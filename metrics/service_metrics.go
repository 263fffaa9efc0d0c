package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsPrefix is the prefix used for all metrics
const MetricsPrefix = "agreement_proxy_"

// Service constants
const (
	ServiceAssist       = "assist"
	ServiceCache        = "cache"
	ServiceInstitutions = "institutions"
	ServiceYears        = "academic-years"
	ServiceMajors       = "majors"
	ServiceAgreements   = "agreements"
)

// statusRateLimited mirrors the status value the HTTP client reports for
// 429 responses
const statusRateLimited = "rate_limited"

var (
	// Global assist request counter (all services)
	// Cardinality: ~4 (success, error, rate_limited, auth_expired)
	AssistRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "assist_requests_total",
			Help: "Total number of HTTP requests to the articulation backend across all services",
		},
		[]string{"status"},
	)

	// Service-specific assist request counter
	// Cardinality: ~16 (4 services x 4 statuses)
	ServiceAssistRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "service_assist_requests_total",
			Help: "Total number of HTTP requests to the articulation backend per service",
		},
		[]string{"service", "status"},
	)

	// Cache tier operations
	// Cardinality: ~8 (4 services x hit/miss)
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "cache_lookups_total",
			Help: "Cache lookups by service and result",
		},
		[]string{"service", "result"},
	)

	// Resolve duration per service
	// Cardinality: ~4 (number of services)
	ResolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: MetricsPrefix + "resolve_duration_seconds",
			Help: "Time taken to resolve a node, including any backend fetch",
		},
		[]string{"service"},
	)

	// Cache size, recorded by the cache service for its memory tier
	// Cardinality: 1
	ServiceCacheSizeGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "service_cache_size",
			Help: "Number of items in service cache",
		},
		[]string{"service"},
	)

	// Retry attempts counter
	// Cardinality: ~4 (number of services)
	ServiceRetryCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "service_retry_attempts_total",
			Help: "Total number of retry attempts per service",
		},
		[]string{"service"},
	)

	// Rate limit hits counter
	// Cardinality: ~4 (number of services)
	RateLimitCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "rate_limit_hits_total",
			Help: "Total number of rate limit hits per service",
		},
		[]string{"service"},
	)

	// Auth expiry counter
	AuthExpiredCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "auth_expired_total",
			Help: "Total number of authentication-expired responses from the backend",
		},
	)
)

// MetricsWriter provides a unified interface for recording service metrics
type MetricsWriter struct {
	serviceName string
}

// NewMetricsWriter creates a new MetricsWriter for the specified service
func NewMetricsWriter(serviceName string) *MetricsWriter {
	return &MetricsWriter{
		serviceName: serviceName,
	}
}

// GetServiceName returns the service name
func (mw *MetricsWriter) GetServiceName() string {
	return mw.serviceName
}

// RecordAssistRequest records a service-specific backend API request
func (mw *MetricsWriter) RecordAssistRequest(status string) {
	AssistRequestsTotal.WithLabelValues(status).Inc()
	ServiceAssistRequestsTotal.WithLabelValues(mw.serviceName, status).Inc()
}

// RecordCacheHit records a cache lookup that was satisfied by a tier
func (mw *MetricsWriter) RecordCacheHit() {
	CacheLookupsTotal.WithLabelValues(mw.serviceName, "hit").Inc()
}

// RecordCacheMiss records a cache lookup that went to the backend
func (mw *MetricsWriter) RecordCacheMiss() {
	CacheLookupsTotal.WithLabelValues(mw.serviceName, "miss").Inc()
}

// RecordResolveDuration records the duration of a node resolution
func (mw *MetricsWriter) RecordResolveDuration(start time.Time) {
	duration := time.Since(start)
	ResolveDuration.WithLabelValues(mw.serviceName).Observe(duration.Seconds())
	log.Printf("Metrics: %s resolve took %.2fs", mw.serviceName, duration.Seconds())
}

// RecordCacheSize records the number of items in service cache
func (mw *MetricsWriter) RecordCacheSize(size int) {
	ServiceCacheSizeGauge.WithLabelValues(mw.serviceName).Set(float64(size))
}

// RecordRetryAttempt records a retry attempt
func (mw *MetricsWriter) RecordRetryAttempt() {
	ServiceRetryCounter.WithLabelValues(mw.serviceName).Inc()
	log.Printf("Metrics: %s recorded a retry attempt", mw.serviceName)
}

// RecordRateLimited records a rate-limited request
func (mw *MetricsWriter) RecordRateLimited() {
	RateLimitCounter.WithLabelValues(mw.serviceName).Inc()
}

// RecordAuthExpired records an authentication-expired response
func RecordAuthExpired() {
	AuthExpiredCounter.Inc()
}

// Implement HttpStatusHandler interface for MetricsWriter
// OnRequest records an HTTP request with its status
func (mw *MetricsWriter) OnRequest(status string) {
	mw.RecordAssistRequest(status)
	if status == statusRateLimited {
		mw.RecordRateLimited()
	}
}

// OnRetry records an HTTP retry attempt
func (mw *MetricsWriter) OnRetry() {
	mw.RecordRetryAttempt()
}
