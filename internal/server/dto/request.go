package dto

import (
	"strings"

	"github.com/signum-hq/signum/internal/aegis"
)

// --- Health ---

// HealthRequest is a request to check server health.
type HealthRequest struct{}

// Validate is a no-op for HealthRequest.
func (r *HealthRequest) Validate() error {
	return nil
}

// --- Runs ---

// ListRunsRequest lists runs whose row contains Query, ignoring case.
type ListRunsRequest struct {
	Query string `query:"q"`
}

// Validate is a no-op for ListRunsRequest; any query is accepted.
func (r *ListRunsRequest) Validate() error {
	return nil
}

// GetRunRequest is a request to get a run.
type GetRunRequest struct {
	ID string `path:"id"`
}

// Validate validates the get run request fields.
func (r *GetRunRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	return nil
}

// --- Projects ---

// CreateProjectRequest submits a project for processing. Artifact sections
// left out are generated from the goals, or from the description.
type CreateProjectRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Owner       string        `json:"owner"`
	Goals       []string      `json:"goals,omitempty"`
	Artifacts   *aegis.Bundle `json:"artifacts,omitempty"`
}

// Validate validates the create project request fields.
func (r *CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return MissingField("name")
	}
	if strings.TrimSpace(r.Description) == "" {
		return MissingField("description")
	}
	if strings.TrimSpace(r.Owner) == "" {
		return MissingField("owner")
	}
	return nil
}

// --- Preview ---

// PreviewRequest renders Markdown and an optional diagram.
type PreviewRequest struct {
	Markdown string `json:"markdown"`
	Diagram  string `json:"diagram,omitempty"`
}

// Validate is a no-op for PreviewRequest; empty input renders to empty output.
func (r *PreviewRequest) Validate() error {
	return nil
}

// ValidateJSONRequest checks whether Text is valid JSON.
type ValidateJSONRequest struct {
	Text string `json:"text"`
}

// Validate is a no-op for ValidateJSONRequest; invalid text is a result, not an error.
func (r *ValidateJSONRequest) Validate() error {
	return nil
}

// --- Exports ---

// ListExportsRequest lists the export kinds.
type ListExportsRequest struct{}

// Validate is a no-op for ListExportsRequest.
func (r *ListExportsRequest) Validate() error {
	return nil
}

// GetExportRequest downloads one export of a run.
type GetExportRequest struct {
	ID   string `path:"id"`
	Kind string `path:"kind"`
}

// Validate validates the get export request fields.
func (r *GetExportRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	if r.Kind == "" {
		return MissingField("kind")
	}
	return nil
}

// --- Schemas ---

// GetSchemaRequest is a request for a JSON Schema by name.
type GetSchemaRequest struct {
	Name string `path:"name"`
}

// Validate validates the get schema request fields.
func (r *GetSchemaRequest) Validate() error {
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}
