// Package metrics provides Prometheus instrumentation for the video-converter service.
//
// All metrics are registered with the default registry through promauto and
// are prefixed with "video_converter_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Conversion Metrics
//
//   - ConversionsTotal: Counter by strategy (remux/reencode), target format and outcome
//   - ConversionDuration: Histogram of encoder run time by strategy
//   - ConversionsInFlight: Gauge of conversions between upload and response
//   - UploadBytes: Histogram of accepted upload sizes
//   - UploadsRejectedTotal: Counter of uploads refused before any work was done
//
// ## Workspace Metrics
//
//   - WorkspacesActive: Gauge of allocated per-request workspaces
//   - WorkDirBytes: Gauge of bytes held under the work directory
//   - WorkspaceBytesSweptTotal: Counter of bytes reclaimed from stale workspaces
//   - EncoderProcessesActive: Gauge of running encoder processes
//
// ## Filesystem Metrics
//
//   - FilesystemRetryAttempts, FilesystemRetrySuccess, FilesystemRetryFailures:
//     Counters by operation (remove, open) for transient network storage errors
//
// # Usage
//
// Record metrics directly on the exported collectors:
//
//	metrics.ConversionsTotal.WithLabelValues("remux", "mkv", "success").Inc()
//
// The Collector polls a StatsProvider on an interval for gauges that are
// cheaper to sample than to track incrementally.
//
// Call InitializeMetrics once at startup so every label combination is
// present on the first scrape.
package metrics
