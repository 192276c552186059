package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys for conversion spans.
const (
	ConversionTargetKey     = "conversion.target"
	ConversionSourceExtKey  = "conversion.source_ext"
	ConversionStrategyKey   = "conversion.strategy"
	ConversionVideoCodecKey = "conversion.video_codec"
	ConversionAudioCodecKey = "conversion.audio_codec"
	ConversionOutcomeKey    = "conversion.outcome"
	ConversionExitCodeKey   = "conversion.exit_code"

	UploadBytesKey = "upload.bytes"
	WorkspaceKey   = "workspace.name"
)

// RequestAttributes describes what the client asked for.
func RequestAttributes(sourceExt, target string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ConversionSourceExtKey, sourceExt),
		attribute.String(ConversionTargetKey, target),
	}
}

// PlanAttributes describes the decided strategy. Codecs are omitted for
// remuxes, which copy streams.
func PlanAttributes(strategy, videoCodec, audioCodec string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	attrs = append(attrs, attribute.String(ConversionStrategyKey, strategy))
	if videoCodec != "" {
		attrs = append(attrs, attribute.String(ConversionVideoCodecKey, videoCodec))
	}
	if audioCodec != "" {
		attrs = append(attrs, attribute.String(ConversionAudioCodecKey, audioCodec))
	}
	return attrs
}

// OutcomeAttributes records how the conversion ended.
func OutcomeAttributes(kind string, exitCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ConversionOutcomeKey, kind),
		attribute.Int(ConversionExitCodeKey, exitCode),
	}
}
