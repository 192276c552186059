// Package catalog holds the closed set of target formats the converter can
// produce and the codec pair each one is re-encoded with.
//
// The mapping is a table: every format defaults to H.264 video and AAC audio,
// webm uses VP9 and Opus. Adding a format is one entry in the default table
// or one line in the YAML codec table loaded at startup.
package catalog
