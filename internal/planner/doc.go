// Package planner decides how an uploaded file is converted and builds the
// encoder command line for it.
//
// CanRemux is a conservative allow-list: mkv and mov sources may be stream
// copied into mp4, and mp4 sources into mkv or mov. Every other pair, and
// every webm target, is re-encoded with the codec pair from the catalog.
//
// Plans reference files relative to the request workspace (in/ and out/),
// so the argument list never carries host paths.
package planner
