package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})
	return recorder
}

func TestTracingCreatesRequestSpan(t *testing.T) {
	recorder := withRecorder(t)

	var traceID string
	handler := Tracing("video-converter")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = traceIDFromRequest(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/convert?x=1", http.NoBody)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	if got := spans[0].Name(); got != "HTTP POST /convert" {
		t.Errorf("Expected span name %q, got %q", "HTTP POST /convert", got)
	}
	if traceID == "" || traceID != spans[0].SpanContext().TraceID().String() {
		t.Errorf("Expected handler to see trace id %s, got %q", spans[0].SpanContext().TraceID(), traceID)
	}
}

func TestTracingSkipsProbes(t *testing.T) {
	recorder := withRecorder(t)

	handler := Tracing("video-converter")(okHandler())
	for _, path := range []string{"/healthz", "/livez", "/readyz", "/metrics"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, http.NoBody))
	}

	if n := len(recorder.Ended()); n != 0 {
		t.Errorf("Expected probes to be untraced, got %d spans", n)
	}
}

func TestTraceIDFromRequestWithoutSpan(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	if id := traceIDFromRequest(req); id != "" {
		t.Errorf("Expected empty trace id, got %q", id)
	}
}
