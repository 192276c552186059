package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		Enabled:      false,
		ServiceName:  "test-service",
		ExporterType: "grpc",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if provider.tp != nil {
		t.Error("Expected noop provider (tp == nil)")
	}

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	if span.IsRecording() {
		t.Error("Expected noop tracer span to be non-recording")
	}
	span.End()
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "test-service",
		ExporterType: "invalid",
	})
	if err == nil {
		t.Fatal("Expected error for invalid exporter type")
	}

	expectedMsg := "unsupported exporter type: invalid (supported: grpc, http)"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0.0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}

	for _, tt := range tests {
		if got := newSampler(tt.rate).Description(); got != tt.want {
			t.Errorf("newSampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}

	if got := newSampler(0.5).Description(); got == "AlwaysOnSampler" || got == "AlwaysOffSampler" {
		t.Errorf("Expected ratio sampler for 0.5, got %s", got)
	}
}

func TestProviderWithExporterRecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := NewProviderWithExporter(exporter)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	_, span := Tracer("test").Start(context.Background(), "convert")
	span.SetAttributes(OutcomeAttributes("success", 0)...)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "convert" {
		t.Errorf("Expected span name convert, got %s", spans[0].Name)
	}

	found := false
	for _, kv := range spans[0].Attributes {
		if kv.Key == ConversionOutcomeKey && kv.Value.AsString() == "success" {
			found = true
		}
	}
	if !found {
		t.Error("Expected outcome attribute on span")
	}
}

func TestProvider_Shutdown(t *testing.T) {
	provider := &Provider{}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Expected no error on noop shutdown, got: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Expected no error on noop shutdown with canceled context, got: %v", err)
	}
}

func TestTracer(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{ServiceName: "test-service"}); err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	ctx, span := Tracer("test-tracer").Start(context.Background(), "test-span")
	span.End()

	if trace.SpanFromContext(ctx) == nil {
		t.Error("Expected span in context")
	}
}

func TestPlanAttributes(t *testing.T) {
	remux := PlanAttributes("remux", "", "")
	if len(remux) != 1 {
		t.Errorf("Expected only the strategy for remux, got %v", remux)
	}

	reencode := PlanAttributes("reencode", "libx264", "aac")
	want := []attribute.KeyValue{
		attribute.String(ConversionStrategyKey, "reencode"),
		attribute.String(ConversionVideoCodecKey, "libx264"),
		attribute.String(ConversionAudioCodecKey, "aac"),
	}
	if len(reencode) != len(want) {
		t.Fatalf("Expected %d attributes, got %d", len(want), len(reencode))
	}
	for i := range want {
		if reencode[i] != want[i] {
			t.Errorf("attribute %d = %v, want %v", i, reencode[i], want[i])
		}
	}
}

func TestProvider_ConcurrentShutdown(t *testing.T) {
	provider := &Provider{}

	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = provider.Shutdown(ctx)
			done <- struct{}{}
		}()
	}

	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for concurrent shutdown")
		}
	}
}
