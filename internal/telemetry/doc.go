// Package telemetry sets up OpenTelemetry tracing for the converter.
//
// NewProvider installs a global tracer provider exporting over OTLP (gRPC
// or HTTP), or a noop provider when tracing is disabled. Conversion spans
// carry the attribute keys defined in attributes.go.
package telemetry
