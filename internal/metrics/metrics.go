package metrics

import (
	"regexp"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ScheduledScansCreated counts scheduled scan rows inserted by the scheduler.
	ScheduledScansCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scantron_scheduled_scans_created_total",
			Help: "Scheduled scans materialized from scan definitions",
		},
	)

	// ScheduledScanUpdates counts status reports by the status that was set.
	ScheduledScanUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scantron_scheduled_scan_updates_total",
			Help: "Scheduled scan status updates by new status",
		},
		[]string{"status"},
	)

	// ScheduledScansDeleted counts rows removed by the retention job.
	ScheduledScansDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scantron_scheduled_scans_deleted_total",
			Help: "Finished scheduled scans deleted by retention",
		},
	)

	// JobRuns counts background job runs by job and result (ok, error).
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scantron_job_runs_total",
			Help: "Background job runs by job and result",
		},
		[]string{"job", "result"},
	)
)

var numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)

func init() {
	prometheus.MustRegister(RequestDuration, RequestTotal, ScheduledScansCreated, ScheduledScanUpdates,
		ScheduledScansDeleted, JobRuns)
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /v1/sites/123 -> /v1/sites/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordJob counts one run of a background job.
func RecordJob(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	JobRuns.WithLabelValues(job, result).Inc()
}
