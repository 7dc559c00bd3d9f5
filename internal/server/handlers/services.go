// Defines shared service dependencies for handlers.

package handlers

import (
	"github.com/signum-hq/signum/internal/config"
	"github.com/signum-hq/signum/internal/diagram"
	"github.com/signum-hq/signum/internal/runs"
)

// Services holds all service dependencies for handlers.
type Services struct {
	Runs     *runs.Service
	Diagrams *diagram.Registry // may be empty
}

// Config holds configuration values needed by handlers.
type Config struct {
	*config.ServerConfig
	Version string
}
