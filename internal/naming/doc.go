// Package naming sanitizes client supplied filenames and derives output
// names for converted files.
//
// Uploaded names are untrusted: SecureFilename flattens directory
// components and strips everything outside a small ASCII alphabet before
// any name reaches the filesystem.
package naming
