package streaming

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"video-converter/internal/logging"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates that a single write exceeded WriteTimeout,
	// usually because the client stopped reading.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the request context was canceled before
	// the response completed.
	ErrClientGone = errors.New("client disconnected")

	// ErrMaxDuration indicates that the response took longer than
	// MaxDuration in total.
	ErrMaxDuration = errors.New("stream exceeded maximum duration")
)

// Config configures a Writer.
type Config struct {
	// WriteTimeout bounds each write to the client (0 = no deadline).
	WriteTimeout time.Duration
	// MaxDuration bounds the whole response (0 = unlimited).
	MaxDuration time.Duration
	// ChunkSize splits large writes so each one gets a fresh deadline
	// (0 = write as received).
	ChunkSize int
	// OnProgress is called after every mebibyte written.
	OnProgress func(bytesWritten int64, duration time.Duration)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		MaxDuration:  0,
		ChunkSize:    64 * 1024,
	}
}

// Writer is an http.ResponseWriter that gives every write a deadline on
// the underlying connection. It can be handed to http.ServeContent; once a
// write fails, later writes fail with the same error and Err reports it.
type Writer struct {
	w      http.ResponseWriter
	rc     *http.ResponseController
	ctx    context.Context
	config Config

	mu           sync.Mutex
	start        time.Time
	bytesWritten int64
	nextProgress int64
	err          error
}

// NewWriter wraps w. ctx is normally the request context.
func NewWriter(ctx context.Context, w http.ResponseWriter, config Config) *Writer {
	return &Writer{
		w:            w,
		rc:           http.NewResponseController(w),
		ctx:          ctx,
		config:       config,
		start:        time.Now(),
		nextProgress: 1 << 20,
	}
}

// Header implements http.ResponseWriter.
func (sw *Writer) Header() http.Header {
	return sw.w.Header()
}

// WriteHeader implements http.ResponseWriter.
func (sw *Writer) WriteHeader(code int) {
	sw.w.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *Writer) Unwrap() http.ResponseWriter {
	return sw.w
}

// Write implements io.Writer with timeout protection.
func (sw *Writer) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.err != nil {
		return 0, sw.err
	}

	total := 0
	for len(p) > 0 {
		chunk := p
		if sw.config.ChunkSize > 0 && len(chunk) > sw.config.ChunkSize {
			chunk = chunk[:sw.config.ChunkSize]
		}

		n, err := sw.writeChunk(chunk)
		total += n
		if err != nil {
			sw.err = err
			return total, err
		}
		p = p[n:]
	}
	return total, nil
}

// writeChunk performs one deadline-bounded write. The caller holds mu.
func (sw *Writer) writeChunk(p []byte) (int, error) {
	if err := sw.ctx.Err(); err != nil {
		return 0, ErrClientGone
	}
	if sw.config.MaxDuration > 0 && time.Since(sw.start) > sw.config.MaxDuration {
		return 0, ErrMaxDuration
	}

	if sw.config.WriteTimeout > 0 {
		err := sw.rc.SetWriteDeadline(time.Now().Add(sw.config.WriteTimeout))
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			return 0, err
		}
	}

	n, err := sw.w.Write(p)
	sw.bytesWritten += int64(n)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return n, ErrWriteTimeout
		}
		if sw.ctx.Err() != nil {
			return n, ErrClientGone
		}
		return n, err
	}

	if sw.config.OnProgress != nil && sw.bytesWritten >= sw.nextProgress {
		sw.nextProgress = sw.bytesWritten + 1<<20
		sw.config.OnProgress(sw.bytesWritten, time.Since(sw.start))
	}
	return n, nil
}

// Err returns the first write error, if any.
func (sw *Writer) Err() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.err
}

// Stats returns streaming statistics
func (sw *Writer) Stats() (bytesWritten int64, duration time.Duration) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.bytesWritten, time.Since(sw.start)
}

// Finish clears the write deadline so keep-alive connections are not
// closed by a stale deadline, and logs the transfer.
func (sw *Writer) Finish() error {
	if sw.config.WriteTimeout > 0 {
		if err := sw.rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			logging.Debug("Failed to clear write deadline: %v", err)
		}
	}

	n, d := sw.Stats()
	err := sw.Err()
	if err != nil {
		logging.FromContext(sw.ctx).Debug().Err(err).Int64("bytes", n).Dur("duration", d).Msg("stream aborted")
	} else {
		logging.FromContext(sw.ctx).Debug().Int64("bytes", n).Dur("duration", d).Msg("stream completed")
	}
	return err
}
