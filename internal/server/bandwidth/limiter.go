// Package bandwidth throttles egress traffic shared by all clients.
package bandwidth

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"
)

// Limiter is a bytes-per-second token bucket. A nil *Limiter is unlimited.
type Limiter struct {
	l *rate.Limiter
}

// NewLimiter returns a limiter for bytesPerSecond, or nil when it is 0 or
// less.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}
	return &Limiter{l: rate.NewLimiter(rate.Limit(bytesPerSecond), int(bytesPerSecond))}
}

// WaitN blocks until n bytes may be sent or ctx is done.
func (b *Limiter) WaitN(ctx context.Context, n int) error {
	if b == nil {
		return nil
	}
	burst := b.l.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := b.l.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Middleware throttles the response bodies written by next.
func (b *Limiter) Middleware(next http.Handler) http.Handler {
	if b == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&throttledWriter{ResponseWriter: w, ctx: r.Context(), limiter: b}, r)
	})
}

type throttledWriter struct {
	http.ResponseWriter
	ctx     context.Context
	limiter *Limiter
}

// Write sends p once the limiter allows it.
func (t *throttledWriter) Write(p []byte) (int, error) {
	if err := t.limiter.WaitN(t.ctx, len(p)); err != nil {
		return 0, err
	}
	return t.ResponseWriter.Write(p)
}

func (t *throttledWriter) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}
