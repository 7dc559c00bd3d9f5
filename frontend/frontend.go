// Package frontend provides the embedded dashboard assets.
package frontend

import "embed"

// Files contains the embedded web frontend under dist/.
//
//go:embed dist/*
var Files embed.FS
