// Package diagram defines the optional diagram rendering collaborator.
//
// A Renderer turns a diagram description (Mermaid syntax) into displayable
// markup. Renderers are looked up by name in a Registry that the caller
// builds and injects; an absent renderer is a normal case and the diagram
// source is then shown verbatim.
package diagram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// ThemeVariables overrides individual theme colors.
type ThemeVariables struct {
	LineColor        string `json:"lineColor,omitempty" yaml:"lineColor,omitempty"`
	PrimaryTextColor string `json:"primaryTextColor,omitempty" yaml:"primaryTextColor,omitempty"`
}

// Config is the theme configuration passed to a Renderer.
type Config struct {
	StartOnLoad    bool           `json:"startOnLoad" yaml:"startOnLoad"`
	Theme          string         `json:"theme,omitempty" yaml:"theme,omitempty"`
	ThemeVariables ThemeVariables `json:"themeVariables" yaml:"themeVariables"`
}

// DefaultConfig returns the dark theme used by the dashboard.
func DefaultConfig() Config {
	return Config{
		StartOnLoad: false,
		Theme:       "dark",
		ThemeVariables: ThemeVariables{
			LineColor:        "#00f0ff",
			PrimaryTextColor: "#e6f1ff",
		},
	}
}

// Validate checks the theme name against the themes Mermaid ships.
func (c *Config) Validate() error {
	switch c.Theme {
	case "", "default", "dark", "forest", "neutral", "base":
		return nil
	default:
		return fmt.Errorf("unknown diagram theme %q", c.Theme)
	}
}

// Renderer converts a diagram description into markup.
type Renderer interface {
	Render(ctx context.Context, description string, cfg Config) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, description string, cfg Config) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, description string, cfg Config) (string, error) {
	return f(ctx, description, cfg)
}

// Registry maps renderer names to renderers. The zero value is ready to use.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds or replaces a renderer. A nil renderer removes the name.
func (r *Registry) Register(name string, rd Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rd == nil {
		delete(r.renderers, name)
		return
	}
	if r.renderers == nil {
		r.renderers = make(map[string]Renderer)
	}
	r.renderers[name] = rd
}

// Lookup returns the renderer registered under name, or nil.
func (r *Registry) Lookup(name string) Renderer {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.renderers[name]
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.renderers))
}

// Result is the outcome of RenderOrFallback.
type Result struct {
	// HTML is the rendered markup, or the escaped source on fallback.
	HTML string
	// Rendered is false when the source is shown verbatim.
	Rendered bool
}

// errPanic is reported when a renderer panics.
var errPanic = errors.New("diagram renderer panicked")

// RenderOrFallback renders description with r. When r is nil, fails or
// panics, the description is returned HTML-escaped in a pre block. It never
// returns an error.
func RenderOrFallback(ctx context.Context, r Renderer, description string, cfg Config) Result {
	if description == "" {
		return Result{}
	}
	if r != nil {
		out, err := safeRender(ctx, r, description, cfg)
		if err == nil {
			return Result{HTML: out, Rendered: true}
		}
		slog.WarnContext(ctx, "Diagram render unavailable, showing source", "err", err)
	}
	return Result{HTML: Fallback(description)}
}

// Fallback returns the diagram source as escaped preformatted text.
func Fallback(description string) string {
	return `<pre class="diagram-source">` + html.EscapeString(description) + `</pre>`
}

func safeRender(ctx context.Context, r Renderer, description string, cfg Config) (out string, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v", errPanic, v)
		}
	}()
	return r.Render(ctx, description, cfg)
}
