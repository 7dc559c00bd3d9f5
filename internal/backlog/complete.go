package backlog

import (
	"fmt"
	"time"

	"github.com/signum-hq/signum/internal/aegis"
	"github.com/signum-hq/signum/internal/gantt"
	"github.com/signum-hq/signum/internal/project"
	"github.com/signum-hq/signum/internal/uml"
)

// Complete returns a copy of b with its empty sections generated from in.
// Supplied sections are kept as is. The Gantt plan is scheduled from the
// backlog tasks, starting on in.CreatedAt.
//
// The returned names list the generated sections. On error the bundle holds
// every section generated so far, so the gates still report what is
// missing.
func Complete(runID string, in *project.Input, b *aegis.Bundle) (*aegis.Bundle, []string, error) {
	out := &aegis.Bundle{}
	if b != nil {
		*out = *b
	}
	var generated []string
	goals := Goals(in)
	if len(out.Backlog) == 0 {
		out.Backlog = Build(runID, goals, in.CreatedAt)
		generated = append(generated, "backlog")
	}
	if len(out.Docs) == 0 {
		docs, err := Docs(in, goals)
		if err != nil {
			return out, generated, err
		}
		out.Docs = docs
		generated = append(generated, "docs")
	}
	if len(out.UML) == 0 {
		out.UML = uml.ToArtifact(uml.DefaultModel())
		generated = append(generated, "uml")
	}
	if len(out.Gantt) == 0 {
		plan, err := Plan(out.Backlog, in.CreatedAt)
		if err != nil {
			return out, generated, err
		}
		out.Gantt = plan
		generated = append(generated, "gantt")
	}
	return out, generated, nil
}

// Plan schedules the backlog tasks from base and returns the gantt section.
func Plan(section map[string]any, base time.Time) (map[string]any, error) {
	tasks, err := gantt.Schedule(gantt.ParseItems(Tasks(section)), base)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule backlog: %w", err)
	}
	return gantt.ToArtifact(tasks), nil
}
