// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read from environment variables by [LoadConfig]. A .env
// file in the working directory is loaded first by [LoadEnvFile]; variables
// already present in the environment take precedence.
//
//   - PORT: HTTP server port (default: 5000)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - MAX_UPLOAD_BYTES: Largest accepted upload (default: 524288000, 500 MiB)
//   - PROCESS_TIMEOUT: Encoder wall-clock budget, seconds or Go duration (default: 120)
//   - DELIVERY_WRITE_TIMEOUT: Per-write deadline when sending the result to the client (default: 30s)
//   - FFMPEG_PATH: Encoder binary (default: ffmpeg)
//   - WORK_DIR: Root for per-request workspaces (default: $TMPDIR/video-converter)
//   - SUPPORTED_FORMATS: Comma separated subset of the format table (default: all)
//   - CODEC_TABLE_FILE: YAML file replacing the built-in format table
//   - OUTPUT_NAMING: preserve (upload base name) or fixed (output.<ext>)
//   - VIDEO_BITRATE: -b:v value for re-encodes (default: encoder default)
//   - OVERWRITE_OUTPUT: Pass -y to the encoder (default: true)
//   - EXPERIMENTAL_AUDIO: Pass -strict experimental on re-encodes (default: true)
//   - CORS_ALLOWED_ORIGINS: Comma separated origins, or * (default: *)
//   - LOG_LEVEL / DEBUG: Logging level
//   - LOG_FORMAT: json or console (default: console on a terminal)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: false)
//   - OTEL_EXPORTER: grpc or http; empty disables tracing
//   - OTEL_ENDPOINT: OTLP collector address
//   - OTEL_SAMPLING_RATE: Trace sampling ratio (default: 1.0)
//   - GOMEMLIMIT, MEMORY_LIMIT, MEMORY_RATIO: Go heap sizing, see package memory
//
// Invalid numeric or boolean values fall back to their default with a
// warning. An unreadable codec table or an unknown entry in
// SUPPORTED_FORMATS is a startup error.
//
// # Lifecycle Logging
//
// The Log* functions print the banner-style sections that make up the
// startup and shutdown log.
package startup
