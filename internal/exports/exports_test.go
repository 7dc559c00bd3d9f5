package exports

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/signum-hq/signum/internal/aegis"
	"github.com/signum-hq/signum/internal/gantt"
	"github.com/signum-hq/signum/internal/project"
	"github.com/signum-hq/signum/internal/runs"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		err  bool
	}{
		{"manifest", KindManifest, false},
		{"Nexus-Ops", KindNexusOps, false},
		{" report ", KindReport, false},
		{"UML", KindUML, false},
		{"uml-mdj", KindUMLMDJ, false},
		{"Gantt", KindGantt, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseKind(tc.in)
			if tc.err {
				if !errors.Is(err, ErrUnknownKind) {
					t.Errorf("ParseKind(%q) error = %v", tc.in, err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("ParseKind(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	run := &runs.Run{
		ID:     "r1",
		Name:   "Demo",
		Status: runs.StatusFailed,
		Errors: []string{"Docs artifact is empty"},
		Bundle: &aegis.Bundle{
			UML: map[string]any{
				"classes":   []any{map[string]any{"name": "User", "attributes": []any{"id"}}},
				"relations": []any{map[string]any{"source": "Admin", "target": "User", "type": "inheritance"}},
			},
			Gantt: map[string]any{"tasks": []any{
				map[string]any{"id": "T1", "name": "Design", "duration": 2, "start": "2025-03-03"},
				map[string]any{"id": "T2", "name": "Build", "dependencies": []any{"T1"}},
			}},
		},
		Manifest: project.NewManifest("Demo", project.ManifestVersion, []project.Artifact{{ID: "r1-uml", Type: "uml"}}),
	}

	t.Run("manifest", func(t *testing.T) {
		f, err := Build(run, KindManifest)
		if err != nil {
			t.Fatal(err)
		}
		var m project.Manifest
		if err := json.Unmarshal(f.Data, &m); err != nil {
			t.Fatal(err)
		}
		if f.Name != "manifest.json" || m.Project != "Demo" || len(m.Artifacts) != 1 {
			t.Errorf("manifest = %s", f.Data)
		}
	})
	t.Run("manifest of unprocessed run", func(t *testing.T) {
		f, err := Build(&runs.Run{ID: "p", Name: "Pending"}, KindManifest)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(f.Data), `"artifacts": []`) {
			t.Errorf("manifest = %s", f.Data)
		}
	})
	t.Run("nexus_ops", func(t *testing.T) {
		f, err := Build(run, KindNexusOps)
		if err != nil {
			t.Fatal(err)
		}
		var got map[string]any
		if err := json.Unmarshal(f.Data, &got); err != nil {
			t.Fatal(err)
		}
		if got["project_id"] != "r1" {
			t.Errorf("project_id = %v", got["project_id"])
		}
		for _, k := range []string{"backlog", "docs"} {
			if m, ok := got[k].(map[string]any); !ok || len(m) != 0 {
				t.Errorf("%s = %v, want empty object", k, got[k])
			}
		}
	})
	t.Run("report", func(t *testing.T) {
		f, err := Build(run, KindReport)
		if err != nil {
			t.Fatal(err)
		}
		var r aegis.Report
		if err := json.Unmarshal(f.Data, &r); err != nil {
			t.Fatal(err)
		}
		if r.Status != aegis.StatusFailed || len(r.Errors) != 1 {
			t.Errorf("report = %+v", r)
		}
	})
	t.Run("uml", func(t *testing.T) {
		f, err := Build(run, KindUML)
		if err != nil {
			t.Fatal(err)
		}
		s := string(f.Data)
		for _, want := range []string{"classDiagram", "class User", "User <|-- Admin"} {
			if !strings.Contains(s, want) {
				t.Errorf("uml export missing %q:\n%s", want, s)
			}
		}
	})
	t.Run("uml_mdj", func(t *testing.T) {
		f, err := Build(run, KindUMLMDJ)
		if err != nil {
			t.Fatal(err)
		}
		if f.Name != "uml.mdj" || f.ContentType != "application/json" {
			t.Errorf("file = %s %s", f.Name, f.ContentType)
		}
		s := string(f.Data)
		for _, want := range []string{`"_type": "Project"`, `"name": "User"`, `"_type": "UMLAttribute"`} {
			if !strings.Contains(s, want) {
				t.Errorf("mdj export missing %q:\n%s", want, s)
			}
		}
	})
	t.Run("gantt", func(t *testing.T) {
		f, err := Build(run, KindGantt)
		if err != nil {
			t.Fatal(err)
		}
		s := string(f.Data)
		for _, want := range []string{"gantt\n", "title Demo\n", "Design :T1, 2025-03-03, 2d\n", "Build :T2, 2025-03-05, 1d\n"} {
			if !strings.Contains(s, want) {
				t.Errorf("gantt export missing %q:\n%s", want, s)
			}
		}
	})
	t.Run("gantt cycle", func(t *testing.T) {
		cyclic := &runs.Run{ID: "x", Bundle: &aegis.Bundle{Gantt: map[string]any{"tasks": []any{
			map[string]any{"id": "A", "dependencies": []any{"B"}},
			map[string]any{"id": "B", "dependencies": []any{"A"}},
		}}}}
		if _, err := Build(cyclic, KindGantt); !errors.Is(err, gantt.ErrCycle) {
			t.Errorf("error = %v, want ErrCycle", err)
		}
	})
	t.Run("uml bad section", func(t *testing.T) {
		bad := &runs.Run{ID: "x", Bundle: &aegis.Bundle{UML: map[string]any{"classes": "nope"}}}
		if _, err := Build(bad, KindUML); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("unknown", func(t *testing.T) {
		if _, err := Build(run, "pdf"); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("error = %v", err)
		}
	})
}
