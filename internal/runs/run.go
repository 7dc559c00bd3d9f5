// Package runs holds the in-memory catalog of project runs and the worker
// that generates the missing artifacts of submitted projects and scores
// them through the quality gates.
//
// Nothing is persisted: the catalog is seeded from fixtures at startup and
// lives for the duration of the process.
package runs

import (
	"slices"
	"time"

	"github.com/signum-hq/signum/internal/aegis"
	"github.com/signum-hq/signum/internal/project"
	"github.com/signum-hq/signum/internal/rows"
)

// Status is the lifecycle state of a run.
type Status string

// Run statuses.
const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusPassed  Status = aegis.StatusPassed
	StatusFailed  Status = aegis.StatusFailed
)

// Done reports whether the run reached a final state.
func (s Status) Done() bool {
	return s == StatusPassed || s == StatusFailed
}

// Run is one processing of a submitted project.
type Run struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status            `json:"status" yaml:"status"`
	Owner       string            `json:"owner,omitempty" yaml:"owner,omitempty"`
	Goals       []string          `json:"goals,omitempty" yaml:"goals,omitempty"`
	CreatedAt   time.Time         `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	Errors      []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Manifest    *project.Manifest `json:"manifest,omitempty" yaml:"-"`
	Bundle      *aegis.Bundle     `json:"bundle,omitempty" yaml:"bundle,omitempty"`
}

// Clone returns a copy that shares no slices with r. Bundle maps are
// treated as immutable once stored and are shared.
func (r *Run) Clone() *Run {
	c := *r
	c.Errors = slices.Clone(r.Errors)
	c.Goals = slices.Clone(r.Goals)
	c.Manifest = r.Manifest.Clone()
	if r.Bundle != nil {
		b := *r.Bundle
		c.Bundle = &b
	}
	return &c
}

// Input returns the project submission the run was created from.
func (r *Run) Input() *project.Input {
	return &project.Input{
		Name:        r.Name,
		Description: r.Description,
		Owner:       r.Owner,
		Goals:       slices.Clone(r.Goals),
		CreatedAt:   r.CreatedAt,
	}
}

// Record projects the run to the row shown in the dashboard table.
func (r *Run) Record() rows.Record {
	return rows.Record{"id": r.ID, "name": r.Name, "status": string(r.Status)}
}

// Report returns the quality gate outcome recorded on the run.
func (r *Run) Report() aegis.Report {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return aegis.Report{Status: string(r.Status), Errors: errs}
}
