package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"video-converter/internal/catalog"
	"video-converter/internal/logging"
	"video-converter/internal/metrics"
	"video-converter/internal/naming"
	"video-converter/internal/outcome"
	"video-converter/internal/planner"
	"video-converter/internal/telemetry"
	"video-converter/internal/workspace"
)

const tracerName = "video-converter/converter"

// errWorkspaceUnavailable is the client-facing diagnostic when no
// workspace can be created.
const errWorkspaceUnavailable = "workspace unavailable"

// Service orchestrates one conversion per call. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	catalog  *catalog.Catalog
	planner  *planner.Planner
	executor Executor
	cfg      Config

	activeWorkspaces atomic.Int64
}

// New creates a Service.
func New(cat *catalog.Catalog, p *planner.Planner, exec Executor, cfg Config) *Service {
	return &Service{
		catalog:  cat,
		planner:  p,
		executor: exec,
		cfg:      cfg,
	}
}

// Catalog returns the formats the service accepts.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// GetStats implements metrics.StatsProvider.
func (s *Service) GetStats() metrics.Stats {
	stats := metrics.Stats{ActiveWorkspaces: int(s.activeWorkspaces.Load())}
	size, err := workspace.Usage(s.cfg.WorkDir)
	if err != nil {
		logging.Debug("failed to measure work dir: %v", err)
	}
	stats.WorkDirBytes = size
	return stats
}

// Plan validates filename and target and returns the plan a conversion
// would run, without touching the filesystem.
func (s *Service) Plan(filename, target string) (*planner.Plan, error) {
	src, target, err := validate(filename, target)
	if err != nil {
		return nil, err
	}
	return s.buildPlan(src, target)
}

// Convert runs a request through validation, planning and execution. On
// success deliver is called with the artifact; the workspace is removed
// after deliver returns, whatever the outcome. Failures are returned as
// *outcome.Error; errors from deliver are returned as is.
func (s *Service) Convert(ctx context.Context, req Request, deliver DeliverFunc) error {
	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "converter.Convert")
	defer span.End()

	metrics.ConversionsInFlight.Inc()
	defer metrics.ConversionsInFlight.Dec()

	l := logging.FromContext(ctx)
	state := StateReceived

	// Received -> Validated
	filename := req.Filename
	if req.Body == nil {
		filename = ""
	}
	src, target, err := validate(filename, req.TargetFormat)
	if err != nil {
		return s.reject(span, state, err)
	}
	state = StateValidated
	span.SetAttributes(telemetry.RequestAttributes(src.Ext, target)...)

	// Validated -> PlanBuilt
	plan, err := s.buildPlan(src, target)
	if err != nil {
		return s.reject(span, state, err)
	}
	state = StatePlanBuilt
	span.SetAttributes(telemetry.PlanAttributes(plan.Strategy.String(), plan.VideoCodec, plan.AudioCodec)...)

	// PlanBuilt -> Executing
	ws, err := workspace.New(s.cfg.WorkDir)
	if err != nil {
		// The error names the work dir; clients only learn that it failed.
		l.Error().Err(err).Msg("failed to allocate workspace")
		oerr := outcome.Wrap(outcome.InternalError, err, outcome.DefaultMessage(outcome.InternalError))
		oerr.Diagnostic = errWorkspaceUnavailable
		return s.fail(span, state, oerr)
	}
	s.activeWorkspaces.Add(1)
	defer func() {
		if rerr := ws.Release(); rerr != nil {
			l.Warn().Err(rerr).Str("workspace", ws.Name).Msg("failed to release workspace")
		}
		s.activeWorkspaces.Add(-1)
	}()
	span.SetAttributes(attribute.String(telemetry.WorkspaceKey, ws.Name))

	n, err := ws.Persist(plan.InputPath, req.Body, s.cfg.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, workspace.ErrTooLarge) {
			metrics.UploadsRejectedTotal.WithLabelValues("too_large").Inc()
			return s.fail(span, state, outcome.Wrap(outcome.InternalError, err, "File too large"))
		}
		return s.fail(span, state, internalError(ws, err))
	}
	metrics.UploadBytes.Observe(float64(n))
	span.SetAttributes(attribute.Int64(telemetry.UploadBytesKey, n))

	state = StateExecuting
	l.Info().
		Str("workspace", ws.Name).
		Str("source", src.Name).
		Str("target", plan.Target).
		Str("strategy", plan.Strategy.String()).
		Int64("bytes", n).
		Msg("starting conversion")

	res := s.executor.Execute(ctx, plan, ws)

	// Executing -> Completed
	state = StateCompleted
	metrics.ConversionsTotal.WithLabelValues(plan.Strategy.String(), plan.Target, res.Kind.String()).Inc()
	metrics.ConversionDuration.WithLabelValues(plan.Strategy.String()).Observe(res.Elapsed.Seconds())
	span.SetAttributes(telemetry.OutcomeAttributes(res.Kind.String(), res.ExitCode)...)

	if !res.OK() {
		return s.fail(span, state, res.Err())
	}

	info, err := os.Stat(res.OutputPath)
	if err != nil {
		return s.fail(span, state, internalError(ws, err))
	}

	art := Artifact{
		Path:     res.OutputPath,
		Name:     plan.OutputName,
		Format:   plan.Target,
		MimeType: s.catalog.MimeType(plan.Target),
		Size:     info.Size(),
		Strategy: plan.Strategy,
	}
	if err := deliver(ctx, art); err != nil {
		span.RecordError(err)
		l.Warn().Err(err).Str("workspace", ws.Name).Msg("failed to deliver artifact")
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// validate covers the Received -> Validated transition.
func validate(filename, target string) (planner.Source, string, error) {
	if strings.TrimSpace(filename) == "" {
		return planner.Source{}, "", outcome.Errorf(outcome.NoFileUploaded, "%s", outcome.DefaultMessage(outcome.NoFileUploaded))
	}

	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return planner.Source{}, "", outcome.Errorf(outcome.InvalidFormat, "Unsupported format: %s", target)
	}

	return planner.NewSource(naming.Sanitize(filename)), target, nil
}

// buildPlan covers the Validated -> PlanBuilt transition.
func (s *Service) buildPlan(src planner.Source, target string) (*planner.Plan, error) {
	plan, err := s.planner.Plan(src, target)
	if err != nil {
		if errors.Is(err, catalog.ErrUnsupportedFormat) {
			return nil, outcome.Wrap(outcome.InvalidFormat, err, fmt.Sprintf("Unsupported format: %s", target))
		}
		return nil, outcome.Wrap(outcome.InternalError, err, outcome.DefaultMessage(outcome.InternalError))
	}
	return plan, nil
}

// reject records a validation failure. No workspace exists yet.
func (s *Service) reject(span trace.Span, state State, err error) error {
	var oerr *outcome.Error
	if errors.As(err, &oerr) {
		switch oerr.Kind {
		case outcome.NoFileUploaded:
			metrics.UploadsRejectedTotal.WithLabelValues("no_file").Inc()
		case outcome.InvalidFormat:
			metrics.UploadsRejectedTotal.WithLabelValues("invalid_format").Inc()
		}
	}
	logging.Debug("conversion rejected in state %s: %v", state, err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// internalError wraps err with its diagnostic scrubbed of host paths.
func internalError(ws *workspace.Workspace, err error) *outcome.Error {
	e := outcome.Wrap(outcome.InternalError, err, outcome.DefaultMessage(outcome.InternalError))
	e.Diagnostic = ws.Scrub(e.Diagnostic)
	return e
}

func (s *Service) fail(span trace.Span, state State, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logging.Debug("conversion failed in state %s: %v", state, err)
	return err
}
