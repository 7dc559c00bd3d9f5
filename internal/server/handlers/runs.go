// Handles run listing, run detail and project submission.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/signum-hq/signum/internal/project"
	"github.com/signum-hq/signum/internal/runs"
	"github.com/signum-hq/signum/internal/server/dto"
)

// RunHandler serves the run catalog.
type RunHandler struct {
	svc *Services
}

// NewRunHandler creates a new run handler.
func NewRunHandler(svc *Services) *RunHandler {
	return &RunHandler{svc: svc}
}

// ListRuns returns the rows of the runs matching the query.
func (h *RunHandler) ListRuns(ctx context.Context, req *dto.ListRunsRequest) (*dto.ListRunsResponse, error) {
	list := h.svc.Runs.List(req.Query)
	return &dto.ListRunsResponse{Runs: list, Total: len(list)}, nil
}

// GetRun returns one run.
func (h *RunHandler) GetRun(ctx context.Context, req *dto.GetRunRequest) (*dto.RunResponse, error) {
	r, err := h.svc.Runs.Get(req.ID)
	if err != nil {
		if errors.Is(err, runs.ErrNotFound) {
			return nil, dto.RunNotFound(req.ID)
		}
		return nil, dto.InternalWithError("Failed to get run", err)
	}
	return runToResponse(r), nil
}

// CreateProject queues a project and returns the id of its run.
func (h *RunHandler) CreateProject(ctx context.Context, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	in := &project.Input{Name: req.Name, Description: req.Description, Owner: req.Owner, Goals: req.Goals}
	id, err := h.svc.Runs.Submit(in, req.Artifacts)
	if err != nil {
		if errors.Is(err, runs.ErrQueueFull) {
			return nil, dto.Unavailable("Too many pending runs").Wrap(err)
		}
		return nil, dto.BadRequest(err.Error())
	}
	slog.InfoContext(ctx, "Project submitted", "run", id, "name", req.Name)
	return &dto.CreateProjectResponse{RunID: id, Status: string(runs.StatusPending)}, nil
}

func runToResponse(r *runs.Run) *dto.RunResponse {
	resp := &dto.RunResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      string(r.Status),
		Owner:       r.Owner,
		Goals:       r.Goals,
		Errors:      r.Report().Errors,
		Manifest:    r.Manifest,
		Artifacts:   r.Bundle,
	}
	if !r.CreatedAt.IsZero() {
		resp.Created = r.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
