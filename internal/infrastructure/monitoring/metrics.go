package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Lifecycle operation metrics
	OperationCalls    *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec

	// Storage transitions
	Transitions    *prometheus.CounterVec
	FreezesSkipped *prometheus.CounterVec
	ArchiveBytes   *prometheus.CounterVec

	// App population
	AppsActive prometheus.Gauge
	AppsCold   prometheus.Gauge

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests int64
	TotalErrors   int64
	Thaws         int64
	Freezes       int64
	Creates       int64
	ActiveApps    int64
	ColdApps      int64
	TotalDuration float64 // sum of all request durations
	RequestCount  int64   // count for averaging
}

// NewMetrics creates a metrics collector registered against reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glitchly_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glitchly_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glitchly_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glitchly_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		OperationCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glitchly_lifecycle_operations_total",
				Help: "Total number of lifecycle manager operations",
			},
			[]string{"operation", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glitchly_lifecycle_operation_duration_seconds",
				Help:    "Lifecycle manager operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glitchly_lifecycle_errors_total",
				Help: "Total number of lifecycle manager errors by kind",
			},
			[]string{"operation", "kind"},
		),

		Transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glitchly_storage_transitions_total",
				Help: "Completed storage transitions (create, thaw, freeze)",
			},
			[]string{"transition"},
		),
		FreezesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glitchly_freezes_skipped_total",
				Help: "Scheduled freezes that did not run",
			},
			[]string{"reason"},
		),
		ArchiveBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glitchly_archive_bytes_total",
				Help: "Bytes passed through the archive codec",
			},
			[]string{"kind"},
		),

		AppsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "glitchly_apps_active",
				Help: "Number of apps stored as plain files",
			},
		),
		AppsCold: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "glitchly_apps_cold",
				Help: "Number of apps stored only as archives",
			},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "glitchly_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records a lifecycle manager call
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	m.OperationCalls.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordOperationError records a lifecycle failure by error kind
func (m *Metrics) RecordOperationError(operation, kind string) {
	m.OperationErrors.WithLabelValues(operation, kind).Inc()
}

// RecordTransition records a completed create, thaw or freeze
func (m *Metrics) RecordTransition(transition string) {
	m.Transitions.WithLabelValues(transition).Inc()

	m.mu.Lock()
	switch transition {
	case "thaw":
		m.snapshot.Thaws++
	case "freeze":
		m.snapshot.Freezes++
	case "create":
		m.snapshot.Creates++
	}
	m.mu.Unlock()
}

// RecordFreezeSkipped records a scheduled freeze that was not executed
func (m *Metrics) RecordFreezeSkipped(reason string) {
	m.FreezesSkipped.WithLabelValues(reason).Inc()
}

// RecordArchived records codec throughput for one freeze
func (m *Metrics) RecordArchived(original, compressed int64) {
	m.ArchiveBytes.WithLabelValues("original").Add(float64(original))
	m.ArchiveBytes.WithLabelValues("compressed").Add(float64(compressed))
}

// SetAppCounts sets the active and cold app gauges
func (m *Metrics) SetAppCounts(active, cold int) {
	m.AppsActive.Set(float64(active))
	m.AppsCold.Set(float64(cold))

	m.mu.Lock()
	m.snapshot.ActiveApps = int64(active)
	m.snapshot.ColdApps = int64(cold)
	m.mu.Unlock()
}
