package converter

import (
	"context"
	"io"

	"video-converter/internal/outcome"
	"video-converter/internal/planner"
	"video-converter/internal/workspace"
)

// Executor runs a plan inside a workspace. *transcoder.Transcoder is the
// production implementation.
type Executor interface {
	Execute(ctx context.Context, plan *planner.Plan, ws *workspace.Workspace) outcome.Outcome
}

// Config holds the service's tunables.
type Config struct {
	// WorkDir is the root under which per-request workspaces are created.
	WorkDir string
	// MaxUploadBytes caps the persisted upload; 0 disables the check.
	MaxUploadBytes int64
}

// Request is one conversion request as received from a client.
type Request struct {
	// Filename is the client-supplied name; it is sanitized before use.
	Filename string
	// Body streams the uploaded bytes.
	Body io.Reader
	// TargetFormat is the requested format ID, case-insensitive.
	TargetFormat string
}

// Artifact is a converted file ready to be sent back. Path is only valid
// for the duration of the DeliverFunc call.
type Artifact struct {
	Path     string
	Name     string
	Format   string
	MimeType string
	Size     int64
	Strategy planner.Strategy
}

// DeliverFunc hands a successful artifact to the caller. The workspace is
// released once it returns.
type DeliverFunc func(ctx context.Context, art Artifact) error

// State is a step of the per-request conversion lifecycle.
type State int

const (
	StateReceived State = iota
	StateValidated
	StatePlanBuilt
	StateExecuting
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateValidated:
		return "validated"
	case StatePlanBuilt:
		return "plan_built"
	case StateExecuting:
		return "executing"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
