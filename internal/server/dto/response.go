package dto

import (
	"github.com/signum-hq/signum/internal/aegis"
	"github.com/signum-hq/signum/internal/project"
	"github.com/signum-hq/signum/internal/rows"
)

// --- Health ---

// HealthResponse reports server health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// --- Runs ---

// ListRunsResponse holds the rows of the matching runs.
type ListRunsResponse struct {
	Runs  []rows.Record `json:"runs"`
	Total int          `json:"total"`
}

// RunResponse is the full representation of a run.
type RunResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	Owner       string            `json:"owner,omitempty"`
	Goals       []string          `json:"goals,omitempty"`
	Created     string            `json:"created,omitempty"`
	Errors      []string          `json:"errors"`
	Manifest    *project.Manifest `json:"manifest,omitempty"`
	Artifacts   *aegis.Bundle     `json:"artifacts,omitempty"`
}

// --- Projects ---

// CreateProjectResponse returns the id of the run processing the project.
type CreateProjectResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// --- Preview ---

// PreviewResponse holds the rendered preview.
type PreviewResponse struct {
	HTML            string `json:"html"`
	DiagramHTML     string `json:"diagram_html,omitempty"`
	DiagramRendered bool   `json:"diagram_rendered"`
}

// ValidateJSONResponse is the outcome of a JSON validity check.
type ValidateJSONResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// --- Exports ---

// ExportKind describes one export format.
type ExportKind struct {
	Kind     string `json:"kind"`
	Filename string `json:"filename"`
}

// ListExportsResponse lists the export formats.
type ListExportsResponse struct {
	Kinds []ExportKind `json:"kinds"`
}
