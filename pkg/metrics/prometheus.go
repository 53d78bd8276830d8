// Package metrics provides Prometheus metrics for the Penned contest service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the Penned service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Submission metrics
	submissions       *prometheus.CounterVec
	submissionLatency prometheus.Histogram

	// Entry store metrics
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Reconciliation metrics
	syncRuns       *prometheus.CounterVec
	syncAdded      prometheus.Counter
	syncSkipped    prometheus.Counter
	syncFailed     prometheus.Counter
	syncDuration   prometheus.Histogram
	syncLastAdded  prometheus.Gauge
	syncLastUnix   prometheus.Gauge
	syncWeekErrors *prometheus.CounterVec

	// Publishing store (CMS) client metrics
	cmsRequests       *prometheus.CounterVec
	cmsRequestLatency *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "penned",
		subsystem:        "contest",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.submissions = auto.NewCounterVec(
		m.counterOpts("submissions_total", "Submission attempts by week and outcome"),
		[]string{"week", "outcome"},
	)
	m.submissionLatency = auto.NewHistogram(
		m.histogramOpts("submission_latency_milliseconds", "End-to-end submission gate latency in milliseconds"),
	)

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_operation_latency_milliseconds", "Entry store operation latency in milliseconds"),
		[]string{"operation"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Entry store failures by operation"),
		[]string{"operation"},
	)

	m.syncRuns = auto.NewCounterVec(
		m.counterOpts("sync_runs_total", "Reconciliation runs by result"),
		[]string{"result"},
	)
	m.syncAdded = auto.NewCounter(m.counterOpts("sync_added_total", "Entries copied to the publishing store"))
	m.syncSkipped = auto.NewCounter(m.counterOpts("sync_skipped_total", "Entries already present in the publishing store"))
	m.syncFailed = auto.NewCounter(m.counterOpts("sync_failed_total", "Entries that could not be written to the publishing store"))
	m.syncDuration = auto.NewHistogram(
		m.histogramOpts("sync_duration_milliseconds", "Reconciliation run duration in milliseconds"),
	)
	m.syncLastAdded = auto.NewGauge(m.gaugeOpts("sync_last_added", "Entries added by the most recent reconciliation run"))
	m.syncLastUnix = auto.NewGauge(m.gaugeOpts("sync_last_unix", "Unix timestamp of the most recent reconciliation run"))
	m.syncWeekErrors = auto.NewCounterVec(
		m.counterOpts("sync_week_errors_total", "Week partitions that could not be read during reconciliation"),
		[]string{"week"},
	)

	m.cmsRequests = auto.NewCounterVec(
		m.counterOpts("cms_requests_total", "Publishing store requests by operation and status"),
		[]string{"operation", "status_code"},
	)
	m.cmsRequestLatency = auto.NewHistogramVec(
		m.histogramOpts("cms_request_latency_milliseconds", "Publishing store request latency in milliseconds"),
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Allocated heap memory in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
}

// Submission Metrics Functions.

// RecordSubmission counts one gate outcome for a week.
func RecordSubmission(week, outcome string) {
	globalManager.submissions.WithLabelValues(week, outcome).Inc()
}

// RecordSubmissionLatency records end-to-end gate latency.
func RecordSubmissionLatency(latencyMs float64) {
	globalManager.submissionLatency.Observe(latencyMs)
}

// Store Metrics Functions.

// RecordStoreLatency records the latency of one store operation.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// Reconciliation Metrics Functions.

// RecordSyncRun records the totals of one finished reconciliation run.
func RecordSyncRun(result string, added, skipped, failed int, durationMs float64, finishedUnix int64) {
	globalManager.syncRuns.WithLabelValues(result).Inc()
	globalManager.syncAdded.Add(float64(added))
	globalManager.syncSkipped.Add(float64(skipped))
	globalManager.syncFailed.Add(float64(failed))
	globalManager.syncDuration.Observe(durationMs)
	globalManager.syncLastAdded.Set(float64(added))
	globalManager.syncLastUnix.Set(float64(finishedUnix))
}

// RecordSyncWeekError counts a week partition that could not be read.
func RecordSyncWeekError(week string) {
	globalManager.syncWeekErrors.WithLabelValues(week).Inc()
}

// CMS Metrics Functions.

// RecordCMSRequest records one publishing store round trip.
func RecordCMSRequest(operation, statusCode string, latencyMs float64) {
	globalManager.cmsRequests.WithLabelValues(operation, statusCode).Inc()
	globalManager.cmsRequestLatency.WithLabelValues(operation).Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
