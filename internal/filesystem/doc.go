// Package filesystem retries filesystem operations that fail transiently
// on network storage.
//
// WORK_DIR is often a shared volume. On NFS, removing a workspace right
// after the encoder exits can fail with EBUSY or ENOTEMPTY while the
// client still holds silly-renamed .nfsXXXX files, and handles can go
// stale (ESTALE). [RemoveAll] and [OpenWithRetry] retry those errors with
// capped exponential backoff; every other error is returned at once.
//
// Retries are counted by the video_converter_filesystem_retry_* metrics,
// labelled by operation.
package filesystem
