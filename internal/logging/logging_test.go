package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// capture points the logger at a buffer for the duration of a test.
func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Configure(Config{Level: level, Format: FormatJSON, Output: &buf, Service: "test"})
	t.Cleanup(func() { Configure(Config{}) })
	return &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]interface{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"DEBUG", LevelDebug},
		{" error ", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DEBUG", "")
	if got := levelFromEnv(); got != LevelError {
		t.Errorf("Expected error level from LOG_LEVEL, got %v", got)
	}

	t.Setenv("DEBUG", "true")
	if got := levelFromEnv(); got != LevelDebug {
		t.Errorf("Expected DEBUG to win over LOG_LEVEL, got %v", got)
	}
}

func TestLogLevelConstants(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, "warn")

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	records := decodeLines(t, buf)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records at warn level, got %d: %s", len(records), buf.String())
	}
	if records[0]["message"] != "warn 3" || records[0]["level"] != "warn" {
		t.Errorf("Unexpected first record: %v", records[0])
	}
	if records[1]["message"] != "error 4" || records[1]["level"] != "error" {
		t.Errorf("Unexpected second record: %v", records[1])
	}
	if records[0]["service"] != "test" {
		t.Errorf("Expected service field, got %v", records[0]["service"])
	}
}

func TestIsDebugEnabled(t *testing.T) {
	capture(t, "debug")
	if !IsDebugEnabled() {
		t.Error("Expected debug to be enabled")
	}

	Configure(Config{Level: "info", Output: &bytes.Buffer{}})
	if IsDebugEnabled() {
		t.Error("Expected debug to be disabled at info level")
	}
}

func TestPrintfIsNeverFiltered(t *testing.T) {
	buf := capture(t, "error")

	Printf("banner %s", "line")

	if !strings.Contains(buf.String(), "banner line") {
		t.Errorf("Expected Printf output at error level, got %q", buf.String())
	}
}

func TestFromContextAddsRequestID(t *testing.T) {
	buf := capture(t, "info")

	ctx := ContextWithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Fatalf("Expected req-123, got %q", got)
	}

	l := FromContext(ctx)
	l.Info().Msg("hello")

	records := decodeLines(t, buf)
	if len(records) != 1 || records[0]["request_id"] != "req-123" {
		t.Errorf("Expected request_id field, got %v", records)
	}
}

func TestRequestIDFromEmptyContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("Expected empty id, got %q", got)
	}
}

func TestWithComponent(t *testing.T) {
	buf := capture(t, "info")

	l := WithComponent("transcoder")
	l.Info().Msg("started")

	if !strings.Contains(buf.String(), `"component":"transcoder"`) {
		t.Errorf("Expected component field, got %q", buf.String())
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "info", Format: FormatConsole, Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	Info("console %s", "line")

	out := buf.String()
	if !strings.Contains(out, "console line") {
		t.Errorf("Expected message in console output, got %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("Expected non-JSON console output, got %q", out)
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
