// Package gantt schedules backlog tasks by their dependencies and renders
// the plan as a Mermaid gantt chart.
package gantt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format of task start and end dates.
const DateLayout = "2006-01-02"

// ErrCycle is returned when task dependencies form a cycle.
var ErrCycle = errors.New("cycle detected in task dependencies")

// Item is an unscheduled backlog task.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	// Duration is in days. Values under 1 are scheduled as 1.
	Duration     int      `json:"duration,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	// Start is an optional YYYY-MM-DD or RFC 3339 date.
	Start string `json:"start,omitempty"`
}

// Task is a scheduled item. End is Start plus Duration days.
type Task struct {
	ID           string
	Name         string
	Duration     int
	Dependencies []string
	Start        time.Time
	End          time.Time
}

// Schedule orders items by dependency and assigns their dates.
//
// A task starts at its own start date, or base, and never before every
// dependency ended. When base is zero it is the earliest item start date, or
// today. Dependencies on unknown ids are ignored. A repeated id keeps its
// first position and its last definition.
func Schedule(items []Item, base time.Time) ([]Task, error) {
	tasks := make(map[string]*Task, len(items))
	starts := make(map[string]time.Time, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		name := it.Name
		if name == "" {
			name = it.ID
		}
		if _, ok := tasks[it.ID]; !ok {
			ids = append(ids, it.ID)
		}
		tasks[it.ID] = &Task{ID: it.ID, Name: name, Duration: max(1, it.Duration), Dependencies: it.Dependencies}
		delete(starts, it.ID)
		if d, ok := parseDate(it.Start); ok {
			starts[it.ID] = d
		}
	}

	if base.IsZero() {
		for _, d := range starts {
			if base.IsZero() || d.Before(base) {
				base = d
			}
		}
		if base.IsZero() {
			base = time.Now()
		}
	}
	base = day(base)

	order, err := toposort(ids, tasks)
	if err != nil {
		return nil, err
	}
	out := make([]Task, 0, len(order))
	for _, id := range order {
		t := tasks[id]
		earliest := base
		for _, dep := range t.Dependencies {
			if d, ok := tasks[dep]; ok && !d.End.IsZero() && d.End.After(earliest) {
				earliest = d.End
			}
		}
		start := base
		if s, ok := starts[id]; ok {
			start = s
		}
		if start.Before(earliest) {
			start = earliest
		}
		t.Start = start
		t.End = start.AddDate(0, 0, t.Duration)
		out = append(out, *t)
	}
	return out, nil
}

// toposort runs Kahn's algorithm, seeding the queue in ids order.
func toposort(ids []string, tasks map[string]*Task) ([]string, error) {
	indeg := make(map[string]int, len(ids))
	next := make(map[string][]string, len(ids))
	for _, id := range ids {
		for _, dep := range tasks[id].Dependencies {
			if _, ok := tasks[dep]; !ok {
				continue
			}
			indeg[id]++
			next[dep] = append(next[dep], id)
		}
	}
	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	for i := 0; i < len(queue); i++ {
		for _, v := range next[queue[i]] {
			indeg[v]--
			if indeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}
	if len(queue) != len(ids) {
		return nil, ErrCycle
	}
	return queue, nil
}

// mermaidInit is the dark theme header with green lines and purple bars.
const mermaidInit = "%%{init: { 'theme': 'dark', 'themeVariables': {\n" +
	"  'background': '#000000',\n" +
	"  'lineColor': '#00ff7f',\n" +
	"  'taskBkgColor': '#d600ff',\n" +
	"  'taskBorderColor': '#d600ff',\n" +
	"  'fontFamily': 'Inter,JetBrains Mono,monospace'\n" +
	"}} }%%"

// ToMermaid renders tasks as a Mermaid gantt chart with a single Backlog
// section. Each task has an explicit start date and duration.
func ToMermaid(tasks []Task, title string) string {
	if title == "" {
		title = "Project Plan"
	}
	lines := []string{mermaidInit, "gantt", "dateFormat YYYY-MM-DD", "title " + title, "section Backlog"}
	for _, t := range tasks {
		name := strings.ReplaceAll(t.Name, "\n", " ")
		lines = append(lines, fmt.Sprintf("%s :%s, %s, %dd", name, t.ID, t.Start.Format(DateLayout), t.Duration))
	}
	return strings.Join(lines, "\n") + "\n"
}

// ToArtifact returns the plan as a run's gantt section:
// {"tasks": [{id, name, duration, dependencies, start, end}]}.
func ToArtifact(tasks []Task) map[string]any {
	list := make([]any, 0, len(tasks))
	for _, t := range tasks {
		deps := make([]any, 0, len(t.Dependencies))
		for _, d := range t.Dependencies {
			deps = append(deps, d)
		}
		list = append(list, map[string]any{
			"id":           t.ID,
			"name":         t.Name,
			"duration":     t.Duration,
			"dependencies": deps,
			"start":        t.Start.Format(DateLayout),
			"end":          t.End.Format(DateLayout),
		})
	}
	return map[string]any{"tasks": list}
}

// ItemsFromArtifact decodes the task list of a gantt section. A missing
// list is empty.
func ItemsFromArtifact(section map[string]any) ([]Item, error) {
	raw, ok := section["tasks"]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("gantt tasks must be a list, got %T", raw)
	}
	return ParseItems(list), nil
}

// ParseItems decodes task objects. Tasks without an id are named T1, T2, ...
// by position. Dependencies are read from "dependencies", falling back to
// "depends_on" when it is missing or null. Entries that are not objects are
// skipped.
func ParseItems(list []any) []Item {
	items := make([]Item, 0, len(list))
	for i, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		it := Item{ID: "T" + strconv.Itoa(i+1), Duration: 1}
		if v := m["id"]; !falsy(v) {
			it.ID = fmt.Sprint(v)
		}
		if v := m["name"]; !falsy(v) {
			it.Name = fmt.Sprint(v)
		}
		if n, ok := toInt(m["duration"]); ok {
			it.Duration = n
		}
		deps, present := m["dependencies"]
		if !present || deps == nil {
			deps = m["depends_on"]
		}
		if l, ok := deps.([]any); ok {
			for _, d := range l {
				it.Dependencies = append(it.Dependencies, fmt.Sprint(d))
			}
		}
		if s, ok := m["start"].(string); ok {
			it.Start = s
		}
		items = append(items, it)
	}
	return items
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), true
		}
	}
	return time.Time{}, false
}

// day truncates t to midnight UTC of its calendar date.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

// falsy reports nil, zero numbers, false and empty strings or collections.
func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}
