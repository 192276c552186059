package metrics

// Strategy and outcome label values. They match the String forms used by
// the planner and outcome packages.
var (
	strategies = []string{"remux", "reencode"}
	outcomes   = []string{"success", "process_non_zero_exit", "timeout", "internal_error"}
	rejections = []string{"no_file", "invalid_format", "too_large"}
	fsOps      = []string{"remove", "open"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup with the served format IDs.
func InitializeMetrics(formats []string) {
	for _, s := range strategies {
		ConversionDuration.WithLabelValues(s)
		for _, f := range formats {
			for _, o := range outcomes {
				ConversionsTotal.WithLabelValues(s, f, o)
			}
		}
	}

	for _, r := range rejections {
		UploadsRejectedTotal.WithLabelValues(r)
	}

	for _, op := range fsOps {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
	}
}
