package streaming

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.WriteTimeout != 30*time.Second {
		t.Errorf("Expected WriteTimeout=30s, got %v", config.WriteTimeout)
	}

	if config.MaxDuration != 0 {
		t.Errorf("Expected MaxDuration=0 (unlimited), got %v", config.MaxDuration)
	}

	if config.ChunkSize != 64*1024 {
		t.Errorf("Expected ChunkSize=64KB, got %d", config.ChunkSize)
	}
}

func TestWriterWritesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := NewWriter(context.Background(), rec, Config{WriteTimeout: time.Second, ChunkSize: 4})

	n, err := sw.Write([]byte("hello world"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 11 {
		t.Errorf("Expected 11 bytes written, got %d", n)
	}
	if rec.Body.String() != "hello world" {
		t.Errorf("Expected body %q, got %q", "hello world", rec.Body.String())
	}

	written, _ := sw.Stats()
	if written != 11 {
		t.Errorf("Expected Stats to report 11 bytes, got %d", written)
	}
	if err := sw.Finish(); err != nil {
		t.Errorf("Expected clean finish, got %v", err)
	}
}

func TestWriterHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := NewWriter(context.Background(), rec, DefaultConfig())

	sw.Header().Set("Content-Type", "video/mp4")
	sw.WriteHeader(http.StatusPartialContent)

	if rec.Code != http.StatusPartialContent {
		t.Errorf("Expected status 206, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "video/mp4" {
		t.Errorf("Expected header to reach the underlying writer")
	}
	if sw.Unwrap() != rec {
		t.Error("Expected Unwrap to return the wrapped writer")
	}
}

func TestWriterClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	sw := NewWriter(ctx, rec, DefaultConfig())

	cancel()

	if _, err := sw.Write([]byte("data")); !errors.Is(err, ErrClientGone) {
		t.Errorf("Expected ErrClientGone, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("Expected nothing written after cancel, got %d bytes", rec.Body.Len())
	}
}

func TestWriterMaxDuration(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := NewWriter(context.Background(), rec, Config{MaxDuration: time.Nanosecond})
	time.Sleep(time.Millisecond)

	if _, err := sw.Write([]byte("data")); !errors.Is(err, ErrMaxDuration) {
		t.Errorf("Expected ErrMaxDuration, got %v", err)
	}
}

type failingWriter struct {
	*httptest.ResponseRecorder
	err error
}

func (f *failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriterErrorIsSticky(t *testing.T) {
	boom := errors.New("broken pipe")
	sw := NewWriter(context.Background(), &failingWriter{httptest.NewRecorder(), boom}, DefaultConfig())

	if _, err := sw.Write([]byte("a")); !errors.Is(err, boom) {
		t.Fatalf("Expected underlying error, got %v", err)
	}
	if _, err := sw.Write([]byte("b")); !errors.Is(err, boom) {
		t.Errorf("Expected the first error to be repeated, got %v", err)
	}
	if !errors.Is(sw.Err(), boom) {
		t.Errorf("Expected Err to report the failure, got %v", sw.Err())
	}
	if !errors.Is(sw.Finish(), boom) {
		t.Error("Expected Finish to return the failure")
	}
}

func TestWriterProgress(t *testing.T) {
	var calls []int64
	sw := NewWriter(context.Background(), httptest.NewRecorder(), Config{
		ChunkSize: 256 << 10,
		OnProgress: func(n int64, _ time.Duration) {
			calls = append(calls, n)
		},
	})

	if _, err := sw.Write(make([]byte, 3<<20)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("Expected 3 progress callbacks, got %d: %v", len(calls), calls)
	}
	if calls[0] != 1<<20 {
		t.Errorf("Expected first callback at 1MiB, got %d", calls[0])
	}
}

func TestWriterWithServeContent(t *testing.T) {
	content := strings.Repeat("0123456789", 1000)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Range", "bytes=10-19")
	rec := httptest.NewRecorder()

	sw := NewWriter(req.Context(), rec, DefaultConfig())
	http.ServeContent(sw, req, "clip.mp4", time.Time{}, strings.NewReader(content))

	if err := sw.Finish(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Code != http.StatusPartialContent {
		t.Errorf("Expected 206, got %d", rec.Code)
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("Expected ranged body, got %q", rec.Body.String())
	}
}

// TestWriterTimesOutStalledClient serves a large body to a client that
// never reads, over a real connection.
func TestWriterTimesOutStalledClient(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	result := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := NewWriter(r.Context(), w, Config{WriteTimeout: 200 * time.Millisecond, ChunkSize: 64 << 10})
		_, _ = io.Copy(sw, bytes.NewReader(make([]byte, 64<<20)))
		result <- sw.Finish()
	}))
	defer srv.Close()

	conn, err := net.Dial("tcp", srv.Listener.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n")); err != nil {
		t.Fatalf("write request: %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, ErrWriteTimeout) {
			t.Errorf("Expected ErrWriteTimeout, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("handler did not give up on a stalled client")
	}
}
