// Package aegis implements the quality gates applied to a run's artifacts.
//
// Each gate checks one artifact section and returns a message. A run passes
// when every gate passes.
package aegis

import (
	"fmt"
	"strconv"
	"strings"
)

// Run statuses produced by the gates.
const (
	StatusPassed = "PASSED"
	StatusFailed = "FAILED"
)

// MinCoverage is the minimum backlog traceability coverage, in percent.
const MinCoverage = 95.0

// Bundle holds the artifact sections of a run. Missing sections are empty
// and fail their gate.
type Bundle struct {
	Docs    map[string]any `json:"docs,omitempty" yaml:"docs,omitempty"`
	UML     map[string]any `json:"uml,omitempty" yaml:"uml,omitempty"`
	Gantt   map[string]any `json:"gantt,omitempty" yaml:"gantt,omitempty"`
	Backlog map[string]any `json:"backlog,omitempty" yaml:"backlog,omitempty"`
}

// Report is the outcome of RunQualityGates.
type Report struct {
	Status string   `json:"status"`
	Errors []string `json:"errors"`
}

// Passed reports whether every gate passed.
func (r *Report) Passed() bool {
	return r.Status == StatusPassed
}

// Gate checks one artifact section.
type Gate func(artifact map[string]any) (bool, string)

// ValidateDocs requires the intro and usage sections.
func ValidateDocs(artifact map[string]any) (bool, string) {
	if len(artifact) == 0 {
		return false, "Docs artifact is empty"
	}
	var missing []string
	for _, key := range []string{"intro", "usage"} {
		if _, ok := artifact[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return false, "Docs missing sections: " + strings.Join(missing, ", ")
	}
	return true, "Docs validation passed"
}

// ValidateUML requires classes or relations.
func ValidateUML(artifact map[string]any) (bool, string) {
	if len(artifact) == 0 {
		return false, "UML artifact is empty"
	}
	_, hasClasses := artifact["classes"]
	_, hasRelations := artifact["relations"]
	if !hasClasses && !hasRelations {
		return false, "UML must contain at least 'classes' or 'relations'"
	}
	return true, "UML validation passed"
}

// ValidateGantt requires a task list without dependency cycles.
//
// Dependencies are read from "dependencies", falling back to "depends_on".
// Tasks whose id is missing, null, empty, zero or false are named T1, T2,
// ... by position. Dependencies on
// unknown tasks are ignored.
func ValidateGantt(artifact map[string]any) (bool, string) {
	tasks, ok := artifact["tasks"].([]any)
	if !ok {
		return false, "Gantt 'tasks' must be a list"
	}
	deps := make(map[string][]string, len(tasks))
	order := make([]string, 0, len(tasks))
	for i, raw := range tasks {
		fallback := "T" + strconv.Itoa(i+1)
		t, ok := raw.(map[string]any)
		if !ok {
			order = appendNode(order, deps, fallback)
			deps[fallback] = nil
			continue
		}
		id := fallback
		if v := t["id"]; !falsy(v) {
			id = fmt.Sprint(v)
		}
		d, present := t["dependencies"]
		if !present || d == nil {
			d = t["depends_on"]
		}
		var list []string
		if items, ok := d.([]any); ok {
			for _, x := range items {
				list = append(list, fmt.Sprint(x))
			}
		}
		order = appendNode(order, deps, id)
		deps[id] = list
	}
	if hasCycle(order, deps) {
		return false, "Gantt has cyclic dependencies"
	}
	return true, "Gantt validation passed"
}

// ValidateBacklog requires traceability coverage of at least MinCoverage.
func ValidateBacklog(artifact map[string]any) (bool, string) {
	trace, ok := artifact["traceability"].(map[string]any)
	if !ok {
		return false, "Backlog missing 'traceability' section"
	}
	raw, ok := trace["coverage_pct"]
	if !ok || raw == nil {
		return false, "Backlog missing 'traceability.coverage_pct'"
	}
	value, ok := toFloat(raw)
	if !ok {
		return false, "Backlog 'traceability.coverage_pct' must be a number"
	}
	if value < MinCoverage {
		return false, fmt.Sprintf("Backlog coverage %s%% is below %s%%", formatPct(value), formatPct(MinCoverage))
	}
	return true, "Backlog validation passed"
}

// RunQualityGates applies every gate to the bundle.
func RunQualityGates(b *Bundle) Report {
	if b == nil {
		b = &Bundle{}
	}
	checks := []struct {
		gate     Gate
		artifact map[string]any
	}{
		{ValidateDocs, b.Docs},
		{ValidateUML, b.UML},
		{ValidateGantt, b.Gantt},
		{ValidateBacklog, b.Backlog},
	}
	errs := []string{}
	for _, c := range checks {
		if ok, msg := c.gate(c.artifact); !ok {
			errs = append(errs, msg)
		}
	}
	status := StatusPassed
	if len(errs) > 0 {
		status = StatusFailed
	}
	return Report{Status: status, Errors: errs}
}

// hasCycle runs Kahn's algorithm over the dependency graph.
func hasCycle(nodes []string, deps map[string][]string) bool {
	indeg := make(map[string]int, len(nodes))
	adj := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		indeg[n] = 0
	}
	for _, n := range nodes {
		for _, p := range deps[n] {
			if _, ok := indeg[p]; ok {
				indeg[n]++
				adj[p] = append(adj[p], n)
			}
		}
	}
	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if indeg[n] == 0 {
			queue = append(queue, n)
		}
	}
	seen := 0
	for i := 0; i < len(queue); i++ {
		seen++
		for _, v := range adj[queue[i]] {
			indeg[v]--
			if indeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}
	return seen != len(nodes)
}

// appendNode records first-seen order; a repeated id keeps its position and
// its last dependency list wins.
func appendNode(order []string, deps map[string][]string, id string) []string {
	if _, ok := deps[id]; ok {
		return order
	}
	return append(order, id)
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

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// formatPct prints whole numbers with one decimal: 90 -> "90.0".
func formatPct(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
