// Handles export listing and downloads.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/signum-hq/signum/internal/exports"
	"github.com/signum-hq/signum/internal/runs"
	"github.com/signum-hq/signum/internal/server/dto"
)

// ExportHandler serves run exports.
type ExportHandler struct {
	svc *Services
}

// NewExportHandler creates a new export handler.
func NewExportHandler(svc *Services) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// exportFilenames is the download name of each kind.
var exportFilenames = map[exports.Kind]string{
	exports.KindManifest: "manifest.json",
	exports.KindNexusOps: "nexus_ops.json",
	exports.KindReport:   "report.json",
	exports.KindUML:      "uml.mmd",
	exports.KindUMLMDJ:   "uml.mdj",
	exports.KindGantt:    "gantt.mmd",
}

// ListExports returns the available export kinds.
func (h *ExportHandler) ListExports(ctx context.Context, req *dto.ListExportsRequest) (*dto.ListExportsResponse, error) {
	kinds := exports.Kinds()
	resp := &dto.ListExportsResponse{Kinds: make([]dto.ExportKind, 0, len(kinds))}
	for _, k := range kinds {
		resp.Kinds = append(resp.Kinds, dto.ExportKind{Kind: string(k), Filename: exportFilenames[k]})
	}
	return resp, nil
}

// ServeExport writes the export file of a run. It is a raw handler since the
// response is a download, not a JSON document.
func (h *ExportHandler) ServeExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := &dto.GetExportRequest{ID: r.PathValue("id"), Kind: r.PathValue("kind")}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, err)
		return
	}
	f, err := h.build(req)
	if err != nil {
		slog.WarnContext(ctx, "Export failed", "id", req.ID, "kind", req.Kind, "err", err)
		writeErrorResponse(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": req.ID + "-" + f.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(f.Data); err != nil {
		slog.ErrorContext(ctx, "Failed to write export", "err", err)
	}
}

func (h *ExportHandler) build(req *dto.GetExportRequest) (*exports.File, error) {
	kind, err := exports.ParseKind(req.Kind)
	if err != nil {
		return nil, dto.UnknownExport(req.Kind)
	}
	run, err := h.svc.Runs.Get(req.ID)
	if err != nil {
		if errors.Is(err, runs.ErrNotFound) {
			return nil, dto.RunNotFound(req.ID)
		}
		return nil, dto.InternalWithError("Failed to get run", err)
	}
	f, err := exports.Build(run, kind)
	if err != nil {
		return nil, dto.BadRequest("Run artifacts cannot be exported as " + string(kind)).Wrap(err)
	}
	return f, nil
}
