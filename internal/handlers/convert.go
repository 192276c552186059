package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"video-converter/internal/converter"
	"video-converter/internal/filesystem"
	"video-converter/internal/logging"
	"video-converter/internal/outcome"
	"video-converter/internal/streaming"
	"video-converter/internal/workspace"
)

const (
	// multipartMemory is how much of a multipart body is buffered in
	// memory before spilling to temporary files.
	multipartMemory = 32 << 20
	// multipartOverhead allows for boundaries, part headers and the
	// to_format field on top of the file itself.
	multipartOverhead = 1 << 20

	strategyHeader = "X-Conversion-Strategy"
)

// Index is a plain-text liveness string.
// GET /
func (h *Handlers) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Video converter is running\n")
}

// Convert converts an uploaded video and streams the result back.
// POST /convert (multipart: file, to_format)
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		logging.Debug("invalid convert request: %v", err)
		writeJSONError(w, outcome.DefaultMessage(outcome.NoFileUploaded), http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("failed to remove multipart temp files: %v", err)
		}
	}()

	req := converter.Request{TargetFormat: r.FormValue("to_format")}
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		req.Filename = header.Filename
		req.Body = file
	}

	delivered := false
	err := h.converter.Convert(r.Context(), req, func(_ context.Context, art converter.Artifact) error {
		err := serveArtifact(w, r, art, h.delivery)
		delivered = !errors.Is(err, errArtifactUnavailable)
		return err
	})
	if err == nil {
		return
	}
	if delivered {
		// Headers are already on the wire.
		logging.FromContext(r.Context()).Warn().Err(err).Msg("conversion response interrupted")
		return
	}
	writeConversionError(w, r, err)
}

// errArtifactUnavailable marks delivery failures that happen before any
// header is written, so an error response can still be sent.
var errArtifactUnavailable = errors.New("artifact unavailable")

// serveArtifact streams the artifact with Range support. An error means the
// client did not receive the whole file.
func serveArtifact(w http.ResponseWriter, r *http.Request, art converter.Artifact, delivery streaming.Config) error {
	f, err := filesystem.OpenWithRetry(art.Path, filesystem.DefaultRetryConfig())
	if err != nil {
		return fmt.Errorf("%w: open: %w", errArtifactUnavailable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat: %w", errArtifactUnavailable, err)
	}

	w.Header().Set("Content-Type", art.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Name}))
	w.Header().Set(strategyHeader, art.Strategy.String())

	sw := streaming.NewWriter(r.Context(), w, delivery)
	http.ServeContent(sw, r, art.Name, info.ModTime(), f)
	return sw.Finish()
}

// writeConversionError maps a service error onto the HTTP response.
func writeConversionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, workspace.ErrTooLarge) {
		writeJSONError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	var oerr *outcome.Error
	if !errors.As(err, &oerr) {
		logging.FromContext(r.Context()).Error().Err(err).Msg("conversion failed")
		writeJSONError(w, outcome.DefaultMessage(outcome.InternalError), http.StatusInternalServerError)
		return
	}

	switch oerr.Kind {
	case outcome.NoFileUploaded, outcome.InvalidFormat:
		writeJSONError(w, oerr.Message, http.StatusBadRequest)
	default:
		logging.FromContext(r.Context()).Error().
			Str("kind", oerr.Kind.String()).
			Str("details", oerr.Diagnostic).
			Msg(oerr.Message)
		writeJSONErrorDetails(w, oerr.Message, oerr.Diagnostic, http.StatusInternalServerError)
	}
}

// ListFormats returns the supported target formats.
// GET /formats
func (h *Handlers) ListFormats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"formats": h.converter.Catalog().Formats(),
	})
}
