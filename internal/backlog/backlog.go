// Package backlog generates the artifact sections a submission leaves out.
//
// Goals become a backlog of epics, user stories and tasks traced back to
// their goal. The backlog tasks are scheduled into a Gantt plan, and the
// project input fills the docs templates.
package backlog

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/signum-hq/signum/internal/project"
)

// PipelineStage tags generated backlogs.
const PipelineStage = "AIONA"

// Goal is one project objective.
type Goal struct {
	ID   string
	Text string
}

// Goals numbers the non-blank goals of in as G1, G2, ... A project without
// goals has its description as single goal.
func Goals(in *project.Input) []Goal {
	var goals []Goal
	for _, g := range in.Goals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, Goal{ID: "G" + strconv.Itoa(len(goals)+1), Text: g})
		}
	}
	if len(goals) == 0 {
		if d := strings.TrimSpace(in.Description); d != "" {
			goals = append(goals, Goal{ID: "G1", Text: d})
		}
	}
	return goals
}

// Build returns the backlog section for goals. Each goal gets one epic
// holding one user story of three chained tasks.
func Build(projectID string, goals []Goal, now time.Time) map[string]any {
	epics := make([]any, 0, len(goals))
	covered := map[string]struct{}{}
	for i, g := range goals {
		n := strconv.Itoa(i + 1)
		epicID := "E" + n
		refs := []any{g.ID}
		var tasks []any
		prev := ""
		for j, name := range taskNames {
			id := "T" + n + "-" + strconv.Itoa(j+1)
			deps := []any{}
			if prev != "" {
				deps = append(deps, prev)
			}
			tasks = append(tasks, map[string]any{
				"id":         id,
				"name":       name,
				"depends_on": deps,
				"dor":        readiness(levelTask),
				"dod":        done(levelTask),
				"goal_refs":  refs,
			})
			prev = id
		}
		story := map[string]any{
			"id":        "U" + n,
			"epic_id":   epicID,
			"actor":     guessActor(g.Text),
			"benefit":   g.Text,
			"dor":       readiness(levelStory),
			"dod":       done(levelStory),
			"goal_refs": refs,
			"tasks":     tasks,
		}
		epics = append(epics, map[string]any{
			"id":           epicID,
			"title":        g.Text,
			"description":  "Epic derived from goal " + g.ID,
			"dor":          readiness(levelEpic),
			"dod":          done(levelEpic),
			"goal_refs":    refs,
			"user_stories": []any{story},
		})
		covered[g.ID] = struct{}{}
	}
	coverage := 0.0
	if len(goals) > 0 {
		coverage = math.Round(10000*float64(len(covered))/float64(len(goals))) / 100
	}
	return map[string]any{
		"pipeline_stage": PipelineStage,
		"generated_at":   now.UTC().Format(time.RFC3339),
		"project_id":     projectID,
		"goals_count":    len(goals),
		"epics":          epics,
		"traceability": map[string]any{
			"total_goals":   len(goals),
			"covered_goals": len(covered),
			"coverage_pct":  coverage,
		},
	}
}

// Tasks returns the tasks of every user story of every epic, in order.
func Tasks(section map[string]any) []any {
	var out []any
	for _, e := range list(section["epics"]) {
		epic, _ := e.(map[string]any)
		for _, s := range list(epic["user_stories"]) {
			story, _ := s.(map[string]any)
			out = append(out, list(story["tasks"])...)
		}
	}
	return out
}

var taskNames = []string{
	"Clarify acceptance criteria",
	"Implement the feature",
	"Test and document",
}

type level int

const (
	levelEpic level = iota
	levelStory
	levelTask
)

// readiness is the Definition of Ready of an item.
func readiness(l level) []any {
	out := []any{"Goal understood by the team", "Stakeholders identified"}
	switch l {
	case levelEpic:
		return append(out, "Epic success criteria defined", "Initial scope and risks mapped")
	case levelStory:
		return append(out, "Actor and benefit defined", "Preliminary acceptance criteria")
	default:
		return append(out, "Dependencies identified", "Preliminary estimate")
	}
}

// done is the Definition of Done of an item.
func done(l level) []any {
	switch l {
	case levelEpic:
		return []any{"All user stories of the epic completed", "Value metrics verified"}
	case levelStory:
		return []any{"Acceptance criteria verified", "User documentation updated"}
	default:
		return []any{"Implementation reviewed", "Tests pass in CI", "Security checklist applied"}
	}
}

func guessActor(goal string) string {
	low := strings.ToLower(goal)
	switch {
	case strings.Contains(low, "admin"):
		return "admin"
	case strings.Contains(low, "dev"):
		return "developer"
	case strings.Contains(low, "ops"), strings.Contains(low, "operation"):
		return "ops"
	default:
		return "user"
	}
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}
