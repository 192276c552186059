package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_converter_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_converter_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_converter_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Conversion metrics
var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_converter_conversions_total",
			Help: "Total number of conversion requests by strategy, target format and outcome",
		},
		[]string{"strategy", "target", "outcome"},
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_converter_conversion_duration_seconds",
			Help:    "Encoder run time in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"strategy"},
	)

	ConversionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_converter_conversions_in_flight",
			Help: "Number of conversions currently being processed",
		},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_converter_upload_bytes",
			Help:    "Size of accepted uploads in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 10), // 64KiB .. 16GiB
		},
	)

	UploadsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_converter_uploads_rejected_total",
			Help: "Total number of uploads rejected before conversion",
		},
		[]string{"reason"}, // "no_file", "invalid_format", "too_large"
	)
)

// Workspace and encoder metrics
var (
	WorkspacesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_converter_workspaces_active",
			Help: "Number of per-request workspaces currently allocated",
		},
	)

	WorkDirBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_converter_work_dir_bytes",
			Help: "Bytes currently held under the work directory",
		},
	)

	WorkspaceBytesSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_converter_workspaces_swept_bytes_total",
			Help: "Total bytes reclaimed by stale workspace sweeps",
		},
	)

	EncoderProcessesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_converter_encoder_processes_active",
			Help: "Number of encoder processes currently running",
		},
	)
)

// Filesystem retry metrics, for work directories on network storage
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_converter_filesystem_retry_attempts_total",
			Help: "Filesystem operations retried after a transient error",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_converter_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after at least one retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_converter_filesystem_retry_failures_total",
			Help: "Filesystem operations that still failed after all retries",
		},
		[]string{"operation"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_converter_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
