// Package project defines the project submission and manifest types.
//
// A project is submitted by a user, validated, and processed into a run. The
// manifest lists the artifacts produced for that run.
package project

import (
	"errors"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
)

// ManifestVersion is the version stamped on manifests built for new runs.
const ManifestVersion = "0.0.1"

// FieldError reports a missing or invalid input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// Input is a project submission. Goals are traced into the generated
// backlog, one epic per goal.
type Input struct {
	Name        string    `json:"name" jsonschema:"minLength=1"`
	Description string    `json:"description" jsonschema:"minLength=1"`
	Owner       string    `json:"owner" jsonschema:"minLength=1"`
	Goals       []string  `json:"goals,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Validate checks required fields and defaults CreatedAt to now.
func (in *Input) Validate() error {
	var errs []error
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, &FieldError{Field: "name", Reason: "required"})
	}
	if strings.TrimSpace(in.Description) == "" {
		errs = append(errs, &FieldError{Field: "description", Reason: "required"})
	}
	if strings.TrimSpace(in.Owner) == "" {
		errs = append(errs, &FieldError{Field: "owner", Reason: "required"})
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Artifact is one generated output of a run.
type Artifact struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Content map[string]any `json:"content"`
}

// Manifest lists a project's artifacts.
type Manifest struct {
	Project   string     `json:"project"`
	Version   string     `json:"version"`
	Artifacts []Artifact `json:"artifacts"`
}

// NewManifest builds a manifest. A nil artifact list is stored as empty.
func NewManifest(projectName, version string, artifacts []Artifact) *Manifest {
	if artifacts == nil {
		artifacts = []Artifact{}
	}
	return &Manifest{Project: projectName, Version: version, Artifacts: artifacts}
}

// Clone returns a deep copy of the manifest's artifact list.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	c := *m
	c.Artifacts = make([]Artifact, len(m.Artifacts))
	copy(c.Artifacts, m.Artifacts)
	return &c
}

// Schema names served by the API.
const (
	SchemaProjectInput = "project_input"
	SchemaManifest     = "manifest"
)

// Schemas returns the JSON Schemas of the public types, keyed by name.
func Schemas() map[string]*jsonschema.Schema {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	return map[string]*jsonschema.Schema{
		SchemaProjectInput: r.Reflect(&Input{}),
		SchemaManifest:     r.Reflect(&Manifest{}),
	}
}
