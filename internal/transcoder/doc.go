// Package transcoder runs conversion plans through FFmpeg.
//
// Each plan runs as its own process inside the request workspace, bounded
// by a wall-clock timeout. Standard output and standard error are drained
// concurrently while the process runs and the trailing part of each is
// kept for diagnostics. On timeout the encoder's whole process group is
// killed so no children outlive the request.
//
// Every run ends in an outcome.Outcome: success with the output path,
// non-zero exit with the captured stderr, timeout, or internal error for
// launch and I/O failures.
//
// FFmpeg must be installed and available in the system PATH, or pointed
// to with FFMPEG_PATH.
package transcoder
