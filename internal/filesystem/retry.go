package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"video-converter/internal/logging"
	"video-converter/internal/metrics"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// IsTransient reports whether err is worth retrying on a network
// filesystem: a stale file handle, or a directory still busy or non-empty
// because the server has not caught up with a just-closed file.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case syscall.ESTALE, syscall.EBUSY, syscall.ENOTEMPTY:
		return true
	}
	return false
}

// Retry runs fn until it succeeds, fails with a non-transient error, or
// MaxRetries retries have been spent. op labels the metrics.
func Retry(op, path string, config RetryConfig, fn func() error) error {
	backoff := config.InitialBackoff
	var err error

	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("Filesystem %s succeeded on retry %d for %s", op, attempt, path)
				metrics.FilesystemRetrySuccess.WithLabelValues(op).Inc()
			}
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt >= config.MaxRetries {
			break
		}

		metrics.FilesystemRetryAttempts.WithLabelValues(op).Inc()
		logging.Debug("Filesystem %s transient error for %s, retrying in %v (attempt %d/%d): %v",
			op, path, backoff, attempt+1, config.MaxRetries, err)
		time.Sleep(backoff)

		backoff *= 2
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	logging.Warn("Filesystem %s failed after %d retries for %s: %v", op, config.MaxRetries, path, err)
	metrics.FilesystemRetryFailures.WithLabelValues(op).Inc()
	return err
}

// RemoveAll is os.RemoveAll with retries for transient NFS errors.
func RemoveAll(path string, config RetryConfig) error {
	return Retry("remove", path, config, func() error {
		return os.RemoveAll(path)
	})
}

// OpenWithRetry performs os.Open with retry logic for NFS stale file handle errors
func OpenWithRetry(path string, config RetryConfig) (*os.File, error) {
	var f *os.File
	err := Retry("open", path, config, func() error {
		var err error
		f, err = os.Open(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}
