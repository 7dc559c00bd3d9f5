// Handles Markdown preview and JSON validation.

package handlers

import (
	"context"

	"github.com/microcosm-cc/bluemonday"
	"github.com/signum-hq/signum/internal/diagram"
	"github.com/signum-hq/signum/internal/jsoncheck"
	"github.com/signum-hq/signum/internal/markdown"
	"github.com/signum-hq/signum/internal/server/dto"
)

// PreviewHandler renders previews.
type PreviewHandler struct {
	svc    *Services
	cfg    *Config
	policy *bluemonday.Policy
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(svc *Services, cfg *Config) *PreviewHandler {
	return &PreviewHandler{svc: svc, cfg: cfg, policy: bluemonday.UGCPolicy()}
}

// Preview renders the Markdown headings and the diagram, if any.
//
// The Markdown output is sanitized when preview.sanitize is set. The diagram
// HTML is either the renderer's SVG or the escaped source.
func (h *PreviewHandler) Preview(ctx context.Context, req *dto.PreviewRequest) (*dto.PreviewResponse, error) {
	out := markdown.Render(req.Markdown)
	if h.cfg.Preview.Sanitize {
		out = h.policy.Sanitize(out)
	}
	resp := &dto.PreviewResponse{HTML: out}
	if req.Diagram != "" {
		res := diagram.RenderOrFallback(ctx, h.svc.Diagrams.Lookup(diagram.MermaidName), req.Diagram, h.cfg.Preview.Diagram)
		resp.DiagramHTML = res.HTML
		resp.DiagramRendered = res.Rendered
	}
	return resp, nil
}

// ValidateJSON reports whether the text is valid JSON. Invalid JSON is a
// normal response, not an error.
func (h *PreviewHandler) ValidateJSON(ctx context.Context, req *dto.ValidateJSONRequest) (*dto.ValidateJSONResponse, error) {
	res := jsoncheck.Check(req.Text)
	return &dto.ValidateJSONResponse{Valid: res.Valid, Message: res.Message}, nil
}
