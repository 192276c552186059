package workspace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"video-converter/internal/filesystem"
	"video-converter/internal/logging"
	"video-converter/internal/metrics"
)

// ErrTooLarge is returned by Persist when the input exceeds the size limit.
var ErrTooLarge = errors.New("upload exceeds size limit")

// namePrefix marks directories owned by this package so Sweep never
// touches anything else under the root.
const namePrefix = "job-"

// Subdirectories created in every workspace.
const (
	InputDir  = "in"
	OutputDir = "out"
)

// Workspace is a request-scoped temporary directory. It exclusively owns
// the files beneath it; Release removes all of them.
type Workspace struct {
	Name string
	Dir  string

	releaseOnce sync.Once
	releaseErr  error
}

// New creates a uniquely named workspace under root, creating root if
// needed.
func New(root string) (*Workspace, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}

	name := namePrefix + uuid.NewString()
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	ws := &Workspace{Name: name, Dir: dir}
	for _, sub := range []string{InputDir, OutputDir} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o700); err != nil {
			_ = ws.Release()
			return nil, fmt.Errorf("create workspace %s dir: %w", sub, err)
		}
	}

	logging.Debug("Created workspace %s", name)
	return ws, nil
}

// Path resolves a workspace-relative path. Paths escaping the workspace
// are rejected.
func (w *Workspace) Path(rel string) (string, error) {
	p := filepath.Join(w.Dir, filepath.FromSlash(rel))
	if p != w.Dir && !strings.HasPrefix(p, w.Dir+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes workspace", rel)
	}
	return p, nil
}

// Persist writes r to the workspace-relative path rel. The file only
// appears under its final name once fully written. A limit <= 0 disables
// the size check. It returns the number of bytes written.
func (w *Workspace) Persist(rel string, r io.Reader, limit int64) (int64, error) {
	dst, err := w.Path(rel)
	if err != nil {
		return 0, err
	}

	pf, err := renameio.NewPendingFile(dst,
		renameio.WithTempDir(filepath.Dir(dst)),
		renameio.WithPermissions(0o600),
	)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", rel, err)
	}
	defer func() {
		if cerr := pf.Cleanup(); cerr != nil {
			logging.Debug("pending file cleanup for %s: %v", rel, cerr)
		}
	}()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	n, err := io.Copy(pf, src)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", rel, err)
	}
	if limit > 0 && n > limit {
		return n, ErrTooLarge
	}

	if err := pf.CloseAtomicallyReplace(); err != nil {
		return n, fmt.Errorf("commit %s: %w", rel, err)
	}
	return n, nil
}

// Scrub replaces the workspace's absolute directory in s with its name so
// diagnostics never reveal host paths.
func (w *Workspace) Scrub(s string) string {
	return strings.ReplaceAll(s, w.Dir, w.Name)
}

// Release removes the workspace and everything in it. It is safe to call
// more than once; later calls return the first call's result.
func (w *Workspace) Release() error {
	w.releaseOnce.Do(func() {
		if err := filesystem.RemoveAll(w.Dir, filesystem.DefaultRetryConfig()); err != nil {
			w.releaseErr = fmt.Errorf("remove workspace %s: %w", w.Name, err)
			return
		}
		logging.Debug("Released workspace %s", w.Name)
	})
	return w.releaseErr
}

// staleMargin is added to the encoder timeout when deciding whether a
// workspace may still belong to a running conversion: it covers the upload
// before the encoder starts and the delivery after it exits.
const staleMargin = time.Hour

// StaleAfter returns how long a workspace must sit untouched before Sweep
// treats it as abandoned, given the encoder timeout.
func StaleAfter(processTimeout time.Duration) time.Duration {
	return processTimeout + staleMargin
}

// Sweep removes workspaces left under root by an earlier process, for
// example after a crash, and returns the number of bytes freed. Several
// processes may share root, so a workspace is only removed once nothing in
// it has been modified for staleAfter. Entries not created by this package
// are left alone.
func Sweep(root string, staleAfter time.Duration) (int64, error) {
	if root == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read workspace root: %w", err)
	}

	cutoff := time.Now().Add(-staleAfter)
	var freedBytes int64
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), namePrefix) {
			continue
		}

		path := filepath.Join(root, entry.Name())
		size, lastModified, err := scan(path)
		if err != nil {
			logging.Debug("skipping workspace %s: %v", entry.Name(), err)
			continue
		}
		if lastModified.After(cutoff) {
			logging.Debug("Workspace %s is still in use, not sweeping", entry.Name())
			continue
		}

		if err := filesystem.RemoveAll(path, filesystem.DefaultRetryConfig()); err != nil {
			logging.Warn("failed to remove stale workspace %s: %v", entry.Name(), err)
			continue
		}
		freedBytes += size
	}

	if freedBytes > 0 {
		metrics.WorkspaceBytesSweptTotal.Add(float64(freedBytes))
		logging.Info("Swept stale workspaces: freed %d bytes", freedBytes)
	}
	return freedBytes, nil
}

// scan returns the size of the files under path and the newest
// modification time of anything in the tree, directories included.
func scan(path string) (int64, time.Time, error) {
	var size int64
	var newest time.Time
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, newest, err
}

// Usage returns the number of bytes held under root. Entries removed
// while it walks are skipped, so it is safe to call while workspaces are
// being released.
func Usage(root string) (int64, error) {
	var size int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		size += info.Size()
		return nil
	})
	return size, err
}
