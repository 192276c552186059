// Package logging provides leveled logging for the video converter,
// backed by zerolog.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// DEBUG=1. Records are JSON unless stdout is a terminal or
// LOG_FORMAT=console. FromContext attaches the request id set by the HTTP
// middleware.
package logging
