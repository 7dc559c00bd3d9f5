// Package server implements the HTTP server and routing logic.
package server

import (
	"io"
	"io/fs"
	"net/http"

	"github.com/signum-hq/signum/frontend"
	"github.com/signum-hq/signum/internal/server/bandwidth"
	"github.com/signum-hq/signum/internal/server/dto"
	"github.com/signum-hq/signum/internal/server/handlers"
	"github.com/signum-hq/signum/internal/server/ratelimit"
)

// NewRouter creates and configures the HTTP router.
// Serves API endpoints at /api/v1/* and the embedded frontend at /.
func NewRouter(svc *handlers.Services, cfg *handlers.Config, limiters *ratelimit.Limiters) http.Handler {
	mux := &http.ServeMux{}

	hh := handlers.NewHealthHandler(cfg.Version)
	rh := handlers.NewRunHandler(svc)
	ph := handlers.NewPreviewHandler(svc, cfg)
	eh := handlers.NewExportHandler(svc)
	sh := handlers.NewSchemaHandler()
	egress := bandwidth.NewLimiter(cfg.Quotas.MaxEgressBandwidthBps)

	mux.Handle("GET /api/v1/health", Wrap(hh.Health, cfg, limiters))

	// Runs
	mux.Handle("GET /api/v1/runs", Wrap(rh.ListRuns, cfg, limiters))
	mux.Handle("GET /api/v1/runs/{id}", Wrap(rh.GetRun, cfg, limiters))
	mux.Handle("POST /api/v1/projects", Wrap(rh.CreateProject, cfg, limiters))

	// Preview
	mux.Handle("POST /api/v1/preview", Wrap(ph.Preview, cfg, limiters))
	mux.Handle("POST /api/v1/validate", Wrap(ph.ValidateJSON, cfg, limiters))

	// Exports
	mux.Handle("GET /api/v1/exports", Wrap(eh.ListExports, cfg, limiters))
	mux.Handle("GET /api/v1/exports/{id}/{kind}", egress.Middleware(WrapRaw(eh.ServeExport, cfg, limiters)))

	// Schemas
	mux.Handle("GET /api/v1/schemas/{name}", Wrap(sh.GetSchema, cfg, limiters))

	// Unknown API routes get a JSON 404 instead of the frontend.
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, dto.NotFound("route "+r.URL.Path))
	})

	// Serve embedded frontend with SPA fallback
	mux.Handle("/", egress.Middleware(NewEmbeddedSPAHandler(frontend.Files)))

	return requestMiddleware(mux)
}

// EmbeddedSPAHandler serves an embedded single-page application with fallback to index.html.
type EmbeddedSPAHandler struct {
	fs fs.FS
}

// NewEmbeddedSPAHandler creates a handler for the embedded frontend. f must
// hold the files under dist/.
func NewEmbeddedSPAHandler(f fs.FS) *EmbeddedSPAHandler {
	return &EmbeddedSPAHandler{fs: f}
}

// ServeHTTP implements http.Handler for embedded SPA routing.
func (h *EmbeddedSPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dist, err := fs.Sub(h.fs, "dist")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	name := r.URL.Path[1:]
	if name != "" {
		if st, err := fs.Stat(dist, name); err == nil && !st.IsDir() {
			if containsDot(r.URL.Path) {
				w.Header().Set("Cache-Control", "public, max-age=3600")
			}
			http.FileServerFS(dist).ServeHTTP(w, r)
			return
		}
	}

	// Fall back to index.html for SPA routing.
	indexFile, err := dist.Open("index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = indexFile.Close() }()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = io.Copy(w, indexFile)
}

// containsDot checks if the last path element has a file extension.
func containsDot(path string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return false
		}
		if path[i] == '.' {
			return true
		}
	}
	return false
}
