// Renders Mermaid diagrams through the mermaid-cli (mmdc) binary.

package diagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// MermaidName is the registry name of the Mermaid renderer.
const MermaidName = "mermaid"

// ErrNoMermaidCLI is returned when mmdc cannot be found.
var ErrNoMermaidCLI = errors.New("mermaid-cli (mmdc) not found")

// MermaidCLI renders diagrams to SVG by running mmdc.
type MermaidCLI struct {
	path    string
	timeout time.Duration
}

// NewMermaidCLI locates the mmdc binary. An empty path searches PATH.
func NewMermaidCLI(path string) (*MermaidCLI, error) {
	if path == "" {
		path = "mmdc"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoMermaidCLI, err)
	}
	return &MermaidCLI{path: resolved, timeout: 30 * time.Second}, nil
}

// Path returns the resolved mmdc binary.
func (m *MermaidCLI) Path() string {
	return m.path
}

// Render implements Renderer.
func (m *MermaidCLI) Render(ctx context.Context, description string, cfg Config) (string, error) {
	dir, err := os.MkdirTemp("", "signum-mmdc-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	in := filepath.Join(dir, "in.mmd")
	out := filepath.Join(dir, "out.svg")
	conf := filepath.Join(dir, "config.json")
	if err := os.WriteFile(in, []byte(description), 0o600); err != nil {
		return "", fmt.Errorf("failed to write diagram: %w", err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(conf, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	args := []string{"-q", "-i", in, "-o", out, "-c", conf}
	if cfg.Theme != "" {
		args = append(args, "-t", cfg.Theme)
	}
	cmd := exec.CommandContext(ctx, m.path, args...) //nolint:gosec // G204: binary path is resolved at startup, args are temp files
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("mmdc failed: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	svg, err := os.ReadFile(out) //nolint:gosec // G304: path is inside our temp dir
	if err != nil {
		return "", fmt.Errorf("failed to read mmdc output: %w", err)
	}
	return string(svg), nil
}
