package service

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes recorded by MetricsService.
const (
	SubmissionOutcomeSuccess    = "success"
	SubmissionOutcomeInvalid    = "invalid"
	SubmissionOutcomeRolledBack = "rolled_back"
)

// MetricsService encapsulates Prometheus instrumentation. A nil *MetricsService is a no-op.
type MetricsService struct {
	registry              *prometheus.Registry
	handler               http.Handler
	requestDuration       *prometheus.HistogramVec
	requestTotal          *prometheus.CounterVec
	attendanceSubmissions *prometheus.CounterVec
	attendanceRecords     prometheus.Counter
	reportsGenerated      prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	attendanceSubmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_submissions_total",
		Help: "Attendance submissions by outcome",
	}, []string{"outcome"})

	attendanceRecords := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_records_written_total",
		Help: "Attendance rows written by committed submissions",
	})

	reportsGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_reports_generated_total",
		Help: "Report files written to the report store",
	})

	registry.MustRegister(
		requestDuration,
		requestTotal,
		attendanceSubmissions,
		attendanceRecords,
		reportsGenerated,
		collectors.NewGoCollector(),
	)

	return &MetricsService{
		registry:              registry,
		handler:               promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:       requestDuration,
		requestTotal:          requestTotal,
		attendanceSubmissions: attendanceSubmissions,
		attendanceRecords:     attendanceRecords,
		reportsGenerated:      reportsGenerated,
	}
}

// RegisterDBStats exports connection pool statistics, including wait counts when the pool is exhausted.
func (m *MetricsService) RegisterDBStats(db *sql.DB, name string) error {
	if m == nil || db == nil {
		return nil
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(db, name)); err != nil {
		return fmt.Errorf("register db stats: %w", err)
	}
	return nil
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSubmission counts an attendance submission and, on success, the rows written.
func (m *MetricsService) RecordSubmission(outcome string, written int) {
	if m == nil {
		return
	}
	m.attendanceSubmissions.WithLabelValues(outcome).Inc()
	if written > 0 {
		m.attendanceRecords.Add(float64(written))
	}
}

// RecordReportGenerated counts a written report file.
func (m *MetricsService) RecordReportGenerated() {
	if m == nil {
		return
	}
	m.reportsGenerated.Inc()
}
