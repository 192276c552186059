// Package main provides the entry point for the video converter server.
//
// The server accepts a video upload over POST /convert together with a
// target format, converts it with FFmpeg and streams the result back as an
// attachment. Containers whose streams are compatible are remuxed; every
// other pair is re-encoded with the target format's codecs.
//
// # Application Lifecycle
//
//  1. Environment: loads .env if present, configures logging and sizes
//     GOMEMLIMIT from the container limit
//  2. Configuration Loading: reads environment variables and validates the
//     work directory and codec table
//  3. Tracing: installs an OpenTelemetry provider (noop unless OTEL_EXPORTER
//     is set)
//  4. Workspace Sweep: removes workspaces left behind by a previous crash,
//     once idle for longer than PROCESS_TIMEOUT plus an hour
//  5. Component Initialization:
//     - Catalog: built-in formats, optionally replaced by CODEC_TABLE_FILE
//     - Planner: chooses remux or re-encode and builds the argv
//     - Transcoder: runs FFmpeg in its own process group with a timeout
//     - Converter: owns the per-request workspace lifecycle
//     - Metrics Collector: samples workspace gauges
//  6. HTTP Server Setup: routes, middleware and the metrics server
//  7. Graceful Shutdown: handles SIGINT/SIGTERM
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 5000):
//     - GET  /          liveness banner
//     - POST /convert   multipart upload (file, to_format)
//     - GET  /formats   supported target formats
//     - GET  /health, /healthz, /livez, /readyz
//     - GET  /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// Requests pass through tracing, request-id, access log, CORS and metrics
// middleware, outermost first.
//
// # Graceful Shutdown
//
//  1. Kill running encoder process groups
//  2. Shutdown main HTTP server (30s timeout)
//  3. Shutdown metrics server (if running)
//  4. Stop metrics collector
//  5. Remove remaining workspaces
//  6. Flush traces
//
// # Environment Variables
//
// See [video-converter/internal/startup] for the full list.
//
// # Related Packages
//
//   - [video-converter/internal/catalog]: supported formats and codecs
//   - [video-converter/internal/planner]: remux advice and command building
//   - [video-converter/internal/transcoder]: FFmpeg process execution
//   - [video-converter/internal/converter]: request lifecycle
//   - [video-converter/internal/handlers]: HTTP request handlers
//   - [video-converter/internal/middleware]: HTTP middleware
package main
