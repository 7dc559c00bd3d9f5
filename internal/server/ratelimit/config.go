// Defines rate limit tiers and routing rules.

package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/signum-hq/signum/internal/config"
)

// Tier is a named limiter. A nil *Tier means unlimited.
type Tier struct {
	Name    string
	Limiter *Limiter
}

// Limiters holds one tier per class of request.
type Limiters struct {
	Write   *Tier // project submissions
	Compute *Tier // preview and validation
	Read    *Tier
}

// New creates the tiers from per-minute limits. A zero limit disables the
// tier. The burst is a sixth of the per-minute rate, at least 1.
func New(cfg config.RateLimits) *Limiters {
	return &Limiters{
		Write:   newTier("write", cfg.WriteRatePerMin),
		Compute: newTier("compute", cfg.ComputeRatePerMin),
		Read:    newTier("read", cfg.ReadRatePerMin),
	}
}

func newTier(name string, perMin int) *Tier {
	if perMin <= 0 {
		return nil
	}
	return &Tier{Name: name, Limiter: NewLimiter(perMin, time.Minute, max(perMin/6, 1))}
}

// Match returns the tier for a request, or nil when it is not limited.
func (l *Limiters) Match(method, path string) *Tier {
	if l == nil || path == "/api/v1/health" {
		return nil
	}
	switch method {
	case http.MethodPost:
		if strings.HasSuffix(path, "/preview") || strings.HasSuffix(path, "/validate") {
			return l.Compute
		}
		return l.Write
	case http.MethodGet, http.MethodHead:
		return l.Read
	default:
		return nil
	}
}

// Close stops all limiter cleanup goroutines.
func (l *Limiters) Close() {
	if l == nil {
		return
	}
	for _, t := range []*Tier{l.Write, l.Compute, l.Read} {
		if t != nil {
			t.Limiter.Close()
		}
	}
}

// BuildKey creates a bucket key from the client identifier and tier name.
func BuildKey(identifier, tierName string) string {
	return "ip:" + identifier + ":" + tierName
}
