package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"ConversionsTotal", ConversionsTotal},
		{"ConversionDuration", ConversionDuration},
		{"ConversionsInFlight", ConversionsInFlight},
		{"UploadBytes", UploadBytes},
		{"UploadsRejectedTotal", UploadsRejectedTotal},
		{"WorkspacesActive", WorkspacesActive},
		{"WorkDirBytes", WorkDirBytes},
		{"WorkspaceBytesSweptTotal", WorkspaceBytesSweptTotal},
		{"EncoderProcessesActive", EncoderProcessesActive},
		{"FilesystemRetryAttempts", FilesystemRetryAttempts},
		{"FilesystemRetrySuccess", FilesystemRetrySuccess},
		{"FilesystemRetryFailures", FilesystemRetryFailures},
		{"AppInfo", AppInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestConversionMetricOperations(t *testing.T) {
	counter := ConversionsTotal.WithLabelValues("remux", "mkv", "success")
	before := testutil.ToFloat64(counter)
	counter.Inc()
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected counter to increase by 1, got %v -> %v", before, got)
	}

	ConversionDuration.WithLabelValues("reencode").Observe(3.5)
	UploadBytes.Observe(1 << 20)

	ConversionsInFlight.Inc()
	ConversionsInFlight.Dec()
	if got := testutil.ToFloat64(ConversionsInFlight); got != 0 {
		t.Errorf("Expected ConversionsInFlight=0, got %v", got)
	}
}

func TestInitializeMetrics(t *testing.T) {
	InitializeMetrics([]string{"mp4", "webm"})

	// 2 strategies x 2 formats x 4 outcomes
	if got := testutil.CollectAndCount(ConversionsTotal); got < 16 {
		t.Errorf("Expected at least 16 conversion series, got %d", got)
	}
	if got := testutil.CollectAndCount(UploadsRejectedTotal); got < 3 {
		t.Errorf("Expected at least 3 rejection series, got %d", got)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc123", "go1.25.0")

	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.2.3", "abc123", "go1.25.0")); got != 1 {
		t.Errorf("Expected app info gauge=1, got %v", got)
	}
}

func TestMetricsAreRegistered(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	for _, mf := range families {
		name := mf.GetName()
		if strings.HasPrefix(name, "go_") || strings.HasPrefix(name, "process_") || strings.HasPrefix(name, "promhttp_") {
			continue
		}
		if !strings.HasPrefix(name, "video_converter_") {
			t.Errorf("Metric %s is missing the video_converter_ prefix", name)
		}
	}
}

func TestMetricsConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				HTTPRequestsTotal.WithLabelValues("POST", "/convert", "200").Inc()
				HTTPRequestsInFlight.Inc()
				HTTPRequestsInFlight.Dec()
				EncoderProcessesActive.Inc()
				EncoderProcessesActive.Dec()
			}
		}()
	}
	wg.Wait()
}
