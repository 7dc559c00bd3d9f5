// Package config loads the server configuration from signum.json.
//
// The file is read only. A missing file yields the defaults; fields absent
// from the file keep their default value.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/signum-hq/signum/internal/diagram"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name inside the config directory.
const FileName = "signum.json"

// ThemeFileName is an optional YAML file overriding Preview.Diagram.
const ThemeFileName = "diagram.yaml"

// ServerConfig stores all server-wide configuration.
type ServerConfig struct {
	// RateLimits defines rate limiting configuration.
	RateLimits RateLimits `json:"rate_limits"`

	// Quotas defines request limits.
	Quotas Quotas `json:"quotas"`

	// Preview configures the Markdown and diagram preview.
	Preview Preview `json:"preview"`
}

// RateLimits defines rate limiting configuration (requests per minute, per
// client IP). 0 means unlimited.
type RateLimits struct {
	// WriteRatePerMin limits project submissions.
	WriteRatePerMin int `json:"write_rate_per_min"`

	// ComputeRatePerMin limits preview and validation requests.
	ComputeRatePerMin int `json:"compute_rate_per_min"`

	// ReadRatePerMin limits read operations.
	ReadRatePerMin int `json:"read_rate_per_min"`
}

// Validate checks that rate limit values are non-negative.
func (r *RateLimits) Validate() error {
	if r.WriteRatePerMin < 0 {
		return errors.New("write_rate_per_min must be non-negative")
	}
	if r.ComputeRatePerMin < 0 {
		return errors.New("compute_rate_per_min must be non-negative")
	}
	if r.ReadRatePerMin < 0 {
		return errors.New("read_rate_per_min must be non-negative")
	}
	return nil
}

// DefaultRateLimits returns the default rate limits.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		WriteRatePerMin:   60,   // 60 req/min for submissions
		ComputeRatePerMin: 600,  // 600 req/min for previews
		ReadRatePerMin:    6000, // 6k req/min for reads
	}
}

// Quotas defines request limits.
type Quotas struct {
	// MaxRequestBodyBytes limits the size of any single HTTP request body.
	MaxRequestBodyBytes int64 `json:"max_request_body_bytes"`

	// MaxEgressBandwidthBps limits export downloads and static files, in
	// bytes per second, across all clients. 0 means unlimited.
	MaxEgressBandwidthBps int64 `json:"max_egress_bandwidth_bps"`
}

// Validate checks that the body limit is positive and the bandwidth limit
// non-negative.
func (q *Quotas) Validate() error {
	if q.MaxRequestBodyBytes <= 0 {
		return errors.New("max_request_body_bytes must be positive")
	}
	if q.MaxEgressBandwidthBps < 0 {
		return errors.New("max_egress_bandwidth_bps must be non-negative")
	}
	return nil
}

// DefaultQuotas returns the default quotas.
func DefaultQuotas() Quotas {
	return Quotas{
		MaxRequestBodyBytes:   1024 * 1024, // 1 MiB
		MaxEgressBandwidthBps: 0,           // unlimited
	}
}

// Preview configures the preview endpoint.
type Preview struct {
	// Sanitize passes rendered HTML through an HTML sanitizer.
	Sanitize bool `json:"sanitize"`

	// Diagram is the theme handed to the diagram renderer.
	Diagram diagram.Config `json:"diagram"`
}

// Validate checks the diagram theme.
func (p *Preview) Validate() error {
	if err := p.Diagram.Validate(); err != nil {
		return fmt.Errorf("diagram: %w", err)
	}
	return nil
}

// Default returns the default configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		RateLimits: DefaultRateLimits(),
		Quotas:     DefaultQuotas(),
		Preview:    Preview{Sanitize: true, Diagram: diagram.DefaultConfig()},
	}
}

// Validate checks that the configuration is valid.
func (c *ServerConfig) Validate() error {
	if err := c.Quotas.Validate(); err != nil {
		return fmt.Errorf("quotas: %w", err)
	}
	if err := c.RateLimits.Validate(); err != nil {
		return fmt.Errorf("rate_limits: %w", err)
	}
	if err := c.Preview.Validate(); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}

// Load reads dir/signum.json, then dir/diagram.yaml if present.
func Load(dir string) (*ServerConfig, error) {
	cfg := Default()
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from the config dir flag
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	theme, err := LoadTheme(filepath.Join(dir, ThemeFileName))
	if err != nil {
		return nil, err
	}
	if theme != nil {
		cfg.Preview.Diagram = *theme
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

// LoadTheme reads a diagram theme from a YAML file. It returns nil, nil when
// the file does not exist.
func LoadTheme(path string) (*diagram.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from the config dir flag
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	theme := diagram.DefaultConfig()
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return &theme, nil
}
