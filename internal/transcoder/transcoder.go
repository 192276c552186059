package transcoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"video-converter/internal/logging"
	"video-converter/internal/metrics"
	"video-converter/internal/outcome"
	"video-converter/internal/planner"
	"video-converter/internal/workspace"
)

// Config controls how the encoder process is run.
type Config struct {
	// Binary is the encoder executable, resolved through PATH if relative.
	Binary string
	// Timeout is the wall-clock budget for one conversion.
	Timeout time.Duration
	// KillGrace bounds how long Wait lingers on I/O after the process is killed.
	KillGrace time.Duration
	// MaxCapture is how many trailing bytes of stdout and stderr are kept.
	MaxCapture int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Binary:     "ffmpeg",
		Timeout:    120 * time.Second,
		KillGrace:  5 * time.Second,
		MaxCapture: 64 * 1024,
	}
}

// Transcoder runs conversion plans as external encoder processes.
type Transcoder struct {
	cfg       Config
	processes map[string]*exec.Cmd
	processMu sync.Mutex
}

// New creates a Transcoder. Zero config fields take their defaults.
func New(cfg Config) *Transcoder {
	def := DefaultConfig()
	if cfg.Binary == "" {
		cfg.Binary = def.Binary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = def.KillGrace
	}
	if cfg.MaxCapture <= 0 {
		cfg.MaxCapture = def.MaxCapture
	}

	return &Transcoder{
		cfg:       cfg,
		processes: make(map[string]*exec.Cmd),
	}
}

// Binary returns the configured encoder executable.
func (t *Transcoder) Binary() string {
	return t.cfg.Binary
}

// Timeout returns the per-conversion budget.
func (t *Transcoder) Timeout() time.Duration {
	return t.cfg.Timeout
}

// Available reports whether the encoder binary can be resolved.
func (t *Transcoder) Available() error {
	if _, err := exec.LookPath(t.cfg.Binary); err != nil {
		return fmt.Errorf("encoder %q not available: %w", t.cfg.Binary, err)
	}
	return nil
}

// Active returns the number of encoder processes currently running.
func (t *Transcoder) Active() int {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	return len(t.processes)
}

// Execute runs plan inside ws and classifies the result. It never returns
// an error; every failure is reported through the Outcome. Diagnostics
// mention the workspace by name only.
func (t *Transcoder) Execute(ctx context.Context, plan *planner.Plan, ws *workspace.Workspace) outcome.Outcome {
	start := time.Now()
	res := t.run(ctx, plan, ws)
	res.Elapsed = time.Since(start)
	res.Diagnostic = ws.Scrub(res.Diagnostic)

	l := logging.FromContext(ctx)
	ev := l.Info()
	if !res.OK() {
		ev = l.Error().Str("stderr", res.Diagnostic).Int("exit_code", res.ExitCode)
	}
	ev.Str("workspace", ws.Name).
		Str("strategy", plan.Strategy.String()).
		Str("target", plan.Target).
		Str("outcome", res.Kind.String()).
		Dur("elapsed", res.Elapsed).
		Msg("encoder finished")

	return res
}

func (t *Transcoder) run(ctx context.Context, plan *planner.Plan, ws *workspace.Workspace) outcome.Outcome {
	runCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.cfg.Binary, plan.Args()...) // #nosec G204 -- argv built by the planner
	cmd.Dir = ws.Dir
	cmd.Stdin = nil
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = t.cfg.KillGrace

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return internalError("failed to create stdout pipe: %v", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return internalError("failed to create stderr pipe: %v", err)
	}

	if err := cmd.Start(); err != nil {
		// The launch error names host paths; only the log gets it.
		logging.FromContext(ctx).Error().Err(err).
			Str("binary", t.cfg.Binary).
			Str("workspace", ws.Name).
			Msg("failed to start encoder")
		return internalError("%s", errEncoderStart)
	}

	t.track(ws.Name, cmd)
	defer t.untrack(ws.Name)

	// Both pipes are drained while the process runs; reading one to EOF
	// before the other can deadlock on a full pipe buffer.
	stdout := newTailBuffer(t.cfg.MaxCapture)
	stderr := newTailBuffer(t.cfg.MaxCapture)
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(stdout, stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(stderr, stderrPipe)
		return err
	})
	drainErr := g.Wait()
	waitErr := cmd.Wait()

	if waitErr == nil && drainErr == nil {
		return t.success(plan, ws, stderr.String())
	}

	switch {
	case ctx.Err() != nil:
		return outcome.Outcome{
			Kind:       outcome.InternalError,
			Diagnostic: fmt.Sprintf("conversion canceled: %v", ctx.Err()),
			ExitCode:   -1,
		}
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return outcome.Outcome{
			Kind:       outcome.Timeout,
			Diagnostic: fmt.Sprintf("conversion exceeded %s and was terminated", t.cfg.Timeout),
			ExitCode:   -1,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return outcome.Outcome{
			Kind:       outcome.ProcessNonZeroExit,
			Diagnostic: stderr.String(),
			ExitCode:   exitErr.ExitCode(),
		}
	}
	if waitErr != nil {
		return internalError("encoder wait failed: %v", waitErr)
	}
	return internalError("failed to read encoder output: %v", drainErr)
}

func (t *Transcoder) success(plan *planner.Plan, ws *workspace.Workspace, stderr string) outcome.Outcome {
	out, err := ws.Path(plan.OutputPath)
	if err != nil {
		return internalError("invalid output path: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		return outcome.Outcome{
			Kind:       outcome.InternalError,
			Diagnostic: fmt.Sprintf("encoder exited cleanly but produced no %s: %s", plan.OutputPath, stderr),
		}
	}
	return outcome.Outcome{Kind: outcome.Success, OutputPath: out}
}

// errEncoderStart is the client-facing diagnostic for a launch failure.
const errEncoderStart = "encoder could not be started"

func internalError(format string, args ...any) outcome.Outcome {
	return outcome.Outcome{
		Kind:       outcome.InternalError,
		Diagnostic: fmt.Sprintf(format, args...),
		ExitCode:   -1,
	}
}

func (t *Transcoder) track(key string, cmd *exec.Cmd) {
	t.processMu.Lock()
	t.processes[key] = cmd
	t.processMu.Unlock()
	metrics.EncoderProcessesActive.Inc()
}

func (t *Transcoder) untrack(key string) {
	t.processMu.Lock()
	delete(t.processes, key)
	t.processMu.Unlock()
	metrics.EncoderProcessesActive.Dec()
}

// Cleanup kills all running encoder processes. Used on shutdown.
func (t *Transcoder) Cleanup() {
	t.processMu.Lock()
	defer t.processMu.Unlock()

	for key, cmd := range t.processes {
		if cmd.Process != nil {
			logging.Info("Killing encoder process for workspace: %s", key)
			if err := killProcessGroup(cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
				logging.Warn("failed to kill encoder process for %s: %v", key, err)
			}
		}
	}
}
