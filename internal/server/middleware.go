// Provides request-scoped middleware: metadata, access logging and panic
// recovery.

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/maruel/ksid"
	"github.com/signum-hq/signum/internal/server/dto"
	"github.com/signum-hq/signum/internal/server/reqctx"
)

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// requestMiddleware adds client IP, User-Agent and a request ID to the
// context, logs each request and turns handler panics into a 500.
func requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := ksid.NewID().String()
		ctx := reqctx.WithClientIP(r.Context(), reqctx.GetClientIP(r))
		ctx = reqctx.WithUserAgent(ctx, r.Header.Get("User-Agent"))
		ctx = reqctx.WithRequestID(ctx, id)
		w.Header().Set("X-Request-Id", id)
		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				slog.ErrorContext(ctx, "Handler panic", "method", r.Method, "path", r.URL.Path, "panic", v, "req", id)
				if rec.status == 0 {
					writeError(rec, dto.Internal("Internal server error"))
				}
			}
			slog.DebugContext(ctx, "http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"dur", time.Since(start).Round(time.Microsecond),
				"ip", reqctx.ClientIP(ctx),
				"req", id)
		}()
		next.ServeHTTP(rec, r.WithContext(ctx))
	})
}
