// Package handlers provides the HTTP handlers of the video converter.
//
// It includes handlers for:
//   - POST /convert, multipart upload and conversion
//   - GET /formats, the supported target formats
//   - Liveness, readiness and health checks
//   - Version information and Prometheus metrics
//
// Conversion failures are reported as JSON: {"error": "...", "details": "..."}.
// Validation failures (no file, unsupported format) use 400, uploads over
// the size limit 413, and encoder failures 500.
package handlers
