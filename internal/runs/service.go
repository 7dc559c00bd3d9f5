package runs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maruel/ksid"
	"github.com/signum-hq/signum/internal/aegis"
	"github.com/signum-hq/signum/internal/backlog"
	"github.com/signum-hq/signum/internal/jsonldb"
	"github.com/signum-hq/signum/internal/project"
	"github.com/signum-hq/signum/internal/rows"
)

// ErrNotFound is returned for an unknown run id.
var ErrNotFound = errors.New("run not found")

// ErrQueueFull is returned when too many submissions are waiting.
var ErrQueueFull = errors.New("run queue is full")

// DefaultQueueSize is the number of submissions that can wait for the worker.
const DefaultQueueSize = 64

// Service is the run catalog.
type Service struct {
	table *jsonldb.Table[*Run]
	queue chan string

	mu        sync.Mutex
	submitted map[string]struct{}
}

// NewService creates a catalog holding the fixtures.
func NewService(fixtures []*Run) *Service {
	return &Service{
		table:     jsonldb.NewTable(fixtures),
		queue:     make(chan string, DefaultQueueSize),
		submitted: map[string]struct{}{},
	}
}

// List returns the rows of the runs matching query, in catalog order.
func (s *Service) List(query string) []rows.Record {
	records := make([]rows.Record, 0, s.table.Len())
	for r := range s.table.All() {
		records = append(records, r.Record())
	}
	return rows.Filter(records, query)
}

// Get returns a copy of the run.
func (s *Service) Get(id string) (*Run, error) {
	r, err := s.table.Find(byID(id))
	if errors.Is(err, jsonldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// Submit validates in and queues a new PENDING run for the worker.
func (s *Service) Submit(in *project.Input, bundle *aegis.Bundle) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	r := &Run{
		ID:          ksid.NewID().String(),
		Name:        in.Name,
		Description: in.Description,
		Owner:       in.Owner,
		Goals:       in.Goals,
		CreatedAt:   in.CreatedAt,
		Status:      StatusPending,
		Bundle:      bundle,
	}
	s.mu.Lock()
	s.submitted[r.ID] = struct{}{}
	s.table.Append(r)
	s.mu.Unlock()
	select {
	case s.queue <- r.ID:
	default:
		_ = s.table.Modify(byID(r.ID), func(r *Run) error {
			r.Status = StatusFailed
			r.Errors = []string{ErrQueueFull.Error()}
			return nil
		})
		return "", ErrQueueFull
	}
	return r.ID, nil
}

// Replace swaps the fixture runs for list. Submitted runs are kept after
// the fixtures.
func (s *Service) Replace(list []*Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.Update(func(current []*Run) []*Run {
		keep := make([]*Run, 0, len(list)+len(s.submitted))
		for _, r := range list {
			if _, ok := s.submitted[r.ID]; !ok {
				keep = append(keep, r)
			}
		}
		for _, r := range current {
			if _, ok := s.submitted[r.ID]; ok {
				keep = append(keep, r)
			}
		}
		return keep
	})
}

// Run processes queued submissions until ctx is done. Artifact sections the
// submission left out are generated before the quality gates run.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.queue:
			if err := s.process(ctx, id); err != nil {
				slog.WarnContext(ctx, "Failed to process run", "id", id, "err", err)
			}
		}
	}
}

func (s *Service) process(ctx context.Context, id string) error {
	var in *project.Input
	var supplied *aegis.Bundle
	if err := s.table.Modify(byID(id), func(r *Run) error {
		r.Status = StatusRunning
		in = r.Input()
		supplied = r.Bundle
		return nil
	}); err != nil {
		return err
	}
	bundle, generated, err := backlog.Complete(id, in, supplied)
	if err != nil {
		slog.WarnContext(ctx, "Failed to generate artifacts", "id", id, "err", err)
	}
	slog.InfoContext(ctx, "Running quality gates", "id", id, "generated", generated)
	report := aegis.RunQualityGates(bundle)
	return s.table.Modify(byID(id), func(r *Run) error {
		r.Bundle = bundle
		r.Status = Status(report.Status)
		r.Errors = report.Errors
		r.Manifest = project.NewManifest(r.Name, project.ManifestVersion, artifacts(id, bundle))
		slog.InfoContext(ctx, "Run finished", "id", id, "status", r.Status, "errors", len(r.Errors))
		return nil
	})
}

// artifacts lists the non-empty bundle sections.
func artifacts(runID string, b *aegis.Bundle) []project.Artifact {
	if b == nil {
		return nil
	}
	var out []project.Artifact
	for _, s := range []struct {
		kind    string
		content map[string]any
	}{
		{"docs", b.Docs},
		{"uml", b.UML},
		{"gantt", b.Gantt},
		{"backlog", b.Backlog},
	} {
		if len(s.content) != 0 {
			out = append(out, project.Artifact{ID: runID + "-" + s.kind, Type: s.kind, Content: s.content})
		}
	}
	return out
}

func byID(id string) func(*Run) bool {
	return func(r *Run) bool { return r.ID == id }
}
