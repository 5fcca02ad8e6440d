package prometheus

import (
	"time"

	"fieldpro-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Tenant context metrics
	TenantContextMissingCounter prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Job metrics
	JobOperationsCounter prometheus.CounterVec

	// Archived job metrics
	JobsArchivedCounter prometheus.Counter

	// Technician metrics
	TechnicianOperationsCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Tenant context metrics
	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Total number of requests without tenant context",
		},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Job metrics
	JobOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_job_operations_total",
			Help: "Total number of job operations",
		},
		[]string{"operation"},
	)

	// Archived job metrics
	JobsArchivedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_jobs_archived_total",
			Help: "Total number of jobs soft-deleted",
		},
	)

	// Technician metrics
	TechnicianOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_technician_operations_total",
			Help: "Total number of technician operations",
		},
		[]string{"operation"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordJobOperation increments the counter for job operations
func RecordJobOperation(operation string) {
	JobOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordJobsArchived adds the number of jobs archived by a soft delete
func RecordJobsArchived(count int64) {
	JobsArchivedCounter.Add(float64(count))
}

// RecordTechnicianOperation increments the counter for technician operations
func RecordTechnicianOperation(operation string) {
	TechnicianOperationsCounter.WithLabelValues(operation).Inc()
}
