// Package workspace manages the temporary directory each conversion runs
// in.
//
// A workspace is created per request under a configured root, holds the
// uploaded input in in/ and the encoder output in out/, and is removed in
// full when the request ends, whatever the outcome. Sweep clears
// workspaces orphaned by a previous process once they have been idle for
// longer than any conversion can take; the root may be shared.
package workspace
