// Package middleware provides HTTP middleware for the video converter.
//
// It includes:
//   - Request ids propagated through the X-Request-ID header
//   - Access logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - CORS for browser clients posting uploads
//   - OpenTelemetry request spans
package middleware
