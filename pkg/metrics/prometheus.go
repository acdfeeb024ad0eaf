// Package metrics provides Prometheus metrics for the goalwatch scanner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the goalwatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Engine
	analyses            *prometheus.CounterVec
	qualified           *prometheus.CounterVec
	cacheSuppressed     prometheus.Counter
	analysisLatency     prometheus.Histogram
	formLookupFallbacks prometheus.Counter

	// Scanner
	scanCycles      prometheus.Counter
	scanDuration    prometheus.Histogram
	fixturesScanned prometheus.Counter
	fixturesInRange prometheus.Gauge
	trackedAlerts   prometheus.Gauge
	scannerPaused   prometheus.Gauge

	// Provider
	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	quotaRemaining   prometheus.Gauge
	circuitState     prometheus.Gauge

	// Dispatch
	dispatches *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	workerPanics            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "goalwatch",
		subsystem:        "scanner",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.analyses = m.counterVec("analyses_total", "Fixture analyses by outcome reason", "reason")
	m.qualified = m.counterVec("qualified_total", "Qualifying fixtures by classification", "classification")
	m.cacheSuppressed = m.counter("cache_suppressed_total", "Analyses skipped because the fixture state did not change")
	m.analysisLatency = m.histogram("analysis_latency_milliseconds", "End to end fixture analysis latency in milliseconds", m.histogramBuckets)
	m.formLookupFallbacks = m.counter("form_lookup_fallbacks_total", "Team form or head-to-head lookups that fell back to neutral defaults")

	m.scanCycles = m.counter("scan_cycles_total", "Completed scan cycles")
	m.scanDuration = m.histogram("scan_duration_milliseconds", "Scan cycle duration in milliseconds", m.histogramBuckets)
	m.fixturesScanned = m.counter("fixtures_scanned_total", "Live fixtures returned by the provider")
	m.fixturesInRange = m.gauge("fixtures_in_window", "Fixtures inside the analysis minute window on the last scan")
	m.trackedAlerts = m.gauge("tracked_alerts", "Alerts currently remembered by the duplicate tracker")
	m.scannerPaused = m.gauge("paused", "1 when scanning is paused")

	m.providerRequests = m.counterVec("provider_requests_total", "Data provider requests by endpoint and status", "endpoint", "status")
	m.providerLatency = m.histogramVec("provider_latency_milliseconds", "Data provider request latency in milliseconds", "endpoint")
	m.quotaRemaining = m.gauge("provider_quota_remaining", "Remaining daily provider request quota")
	m.circuitState = m.gauge("provider_circuit_state", "Provider circuit breaker state (0 closed, 1 half open, 2 open)")

	m.dispatches = m.counterVec("dispatch_total", "Alert deliveries by sink and status", "sink", "status")

	m.queueSize = m.gauge("queue_size", "Current size of the fixture queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueTotal = m.counter("queue_enqueue_total", "Total number of fixtures enqueued")
	m.queueDequeueTotal = m.counter("queue_dequeue_total", "Total number of fixtures dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")

	m.workerActiveCount = m.gauge("worker_active_count", "Number of analysis workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker errors")
	m.workerPanics = m.counter("worker_panics_total", "Total number of recovered worker panics")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordAnalysis counts a finished analysis under its outcome reason.
func RecordAnalysis(reason string) {
	globalManager.analyses.WithLabelValues(reason).Inc()
}

// RecordQualified counts a qualifying fixture.
func RecordQualified(classification string) {
	globalManager.qualified.WithLabelValues(classification).Inc()
}

// RecordCacheSuppressed counts an analysis skipped by the state cache.
func RecordCacheSuppressed() {
	globalManager.cacheSuppressed.Inc()
}

// RecordAnalysisLatency records analysis latency in milliseconds.
func RecordAnalysisLatency(latencyMs float64) {
	globalManager.analysisLatency.Observe(latencyMs)
}

// RecordFormLookupFallback counts a neutral-default substitution.
func RecordFormLookupFallback() {
	globalManager.formLookupFallbacks.Inc()
}

// RecordScanCycle records one completed scan and its duration.
func RecordScanCycle(durationMs float64) {
	globalManager.scanCycles.Inc()
	globalManager.scanDuration.Observe(durationMs)
}

// RecordFixturesScanned adds the number of live fixtures seen in a scan.
func RecordFixturesScanned(n int) {
	globalManager.fixturesScanned.Add(float64(n))
}

// UpdateFixturesInWindow sets the number of fixtures inside the minute window.
func UpdateFixturesInWindow(n int) {
	globalManager.fixturesInRange.Set(float64(n))
}

// UpdateTrackedAlerts sets the number of remembered alerts.
func UpdateTrackedAlerts(n int) {
	globalManager.trackedAlerts.Set(float64(n))
}

// UpdatePaused reflects the pause switch.
func UpdatePaused(paused bool) {
	v := 0.0
	if paused {
		v = 1
	}
	globalManager.scannerPaused.Set(v)
}

// RecordProviderRequest counts a provider request.
func RecordProviderRequest(endpoint, status string) {
	globalManager.providerRequests.WithLabelValues(endpoint, status).Inc()
}

// RecordProviderLatency records provider latency in milliseconds.
func RecordProviderLatency(endpoint string, latencyMs float64) {
	globalManager.providerLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// UpdateQuotaRemaining sets the remaining daily request budget.
func UpdateQuotaRemaining(n int) {
	globalManager.quotaRemaining.Set(float64(n))
}

// UpdateCircuitState sets the breaker state gauge.
func UpdateCircuitState(state float64) {
	globalManager.circuitState.Set(state)
}

// RecordDispatch counts a delivery attempt.
func RecordDispatch(sink, status string) {
	globalManager.dispatches.WithLabelValues(sink, status).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerPanic increments the recovered panic counter.
func RecordWorkerPanic() {
	globalManager.workerPanics.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
