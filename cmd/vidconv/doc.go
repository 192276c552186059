// Command vidconv runs the video converter pipeline against local files.
//
// It builds the same catalog, planner and encoder wiring as the HTTP
// server from the same environment variables, so a conversion that works
// here works over POST /convert.
//
// Usage:
//
//	vidconv <command> [flags]
//
// Commands:
//
//	convert INPUT --to FORMAT [-o OUTPUT] [--force]
//	        Convert a file. The output is written atomically; an existing
//	        file is only replaced with --force.
//
//	plan FILENAME --to FORMAT
//	        Print the strategy and encoder command without running it.
//
//	formats [--json]
//	        List the supported target formats.
//
//	check   Verify that the encoder can be started and the work directory
//	        is writable.
//
// Global flags --ffmpeg and --work-dir override FFMPEG_PATH and WORK_DIR.
package main
