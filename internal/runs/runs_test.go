package runs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signum-hq/signum/internal/aegis"
	"github.com/signum-hq/signum/internal/project"
)

func passingBundle() *aegis.Bundle {
	return &aegis.Bundle{
		Docs: map[string]any{"intro": "x", "usage": "y"},
		UML:  map[string]any{"classes": []any{map[string]any{"name": "User"}}},
		Gantt: map[string]any{"tasks": []any{
			map[string]any{"id": "T1"},
			map[string]any{"id": "T2", "dependencies": []any{"T1"}},
		}},
		Backlog: map[string]any{"traceability": map[string]any{"coverage_pct": 100.0}},
	}
}

func TestService_List(t *testing.T) {
	s := NewService(DefaultFixtures())
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"a1", "b2", "c3"}},
		{"fail", []string{"b2"}},
		{"ALPHA", []string{"a1"}},
		{"status", []string{"a1", "b2", "c3"}},
		{"nothing", nil},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			got := s.List(tc.query)
			if len(got) != len(tc.want) {
				t.Fatalf("List(%q) = %v, want ids %v", tc.query, got, tc.want)
			}
			for i, id := range tc.want {
				if got[i]["id"] != id {
					t.Errorf("List(%q)[%d] id = %v, want %s", tc.query, i, got[i]["id"], id)
				}
			}
		})
	}
}

func TestService_Get(t *testing.T) {
	s := NewService(DefaultFixtures())
	r, err := s.Get("b2")
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "Beta" || r.Status != StatusFailed {
		t.Errorf("Get(b2) = %+v", r)
	}
	if _, err := s.Get("zz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(zz) error = %v", err)
	}
}

func TestService_SubmitAndProcess(t *testing.T) {
	tests := []struct {
		name   string
		bundle *aegis.Bundle
		want   Status
		errs   int
	}{
		{"passing", passingBundle(), StatusPassed, 0},
		{"generated", nil, StatusPassed, 0},
		{"low coverage kept", &aegis.Bundle{Backlog: map[string]any{"traceability": map[string]any{"coverage_pct": 50.0}}}, StatusFailed, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewService(nil)
			id, err := s.Submit(&project.Input{Name: "Demo", Description: "d", Owner: "o", Goals: []string{"Admin console"}}, tc.bundle)
			if err != nil {
				t.Fatal(err)
			}
			r, err := s.Get(id)
			if err != nil {
				t.Fatal(err)
			}
			if r.Status != StatusPending {
				t.Errorf("status before processing = %s", r.Status)
			}
			if r.CreatedAt.IsZero() {
				t.Error("CreatedAt not set")
			}

			ctx, cancel := context.WithCancel(t.Context())
			done := make(chan struct{})
			go func() {
				s.Run(ctx)
				close(done)
			}()
			deadline := time.Now().Add(5 * time.Second)
			for {
				r, _ = s.Get(id)
				if r.Status.Done() || time.Now().After(deadline) {
					break
				}
				time.Sleep(5 * time.Millisecond)
			}
			cancel()
			<-done

			if r.Status != tc.want {
				t.Fatalf("status = %s, want %s (errors %v)", r.Status, tc.want, r.Errors)
			}
			if len(r.Errors) != tc.errs {
				t.Errorf("errors = %v", r.Errors)
			}
			if r.Manifest == nil || r.Manifest.Project != "Demo" || r.Manifest.Version != project.ManifestVersion {
				t.Errorf("manifest = %+v", r.Manifest)
			}
			if len(r.Manifest.Artifacts) != 4 {
				t.Errorf("artifacts = %+v", r.Manifest.Artifacts)
			}
			if r.Bundle == nil || len(r.Bundle.Docs) == 0 || len(r.Bundle.Gantt) == 0 {
				t.Errorf("bundle not completed: %+v", r.Bundle)
			}
		})
	}
}

func TestService_SubmitInvalid(t *testing.T) {
	s := NewService(nil)
	if _, err := s.Submit(&project.Input{Name: "x"}, nil); err == nil {
		t.Fatal("expected validation error")
	}
	if n := len(s.List("")); n != 0 {
		t.Errorf("invalid submission was stored: %d runs", n)
	}
}

func TestService_QueueFull(t *testing.T) {
	s := NewService(nil)
	in := func() *project.Input { return &project.Input{Name: "n", Description: "d", Owner: "o"} }
	for range DefaultQueueSize {
		if _, err := s.Submit(in(), nil); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Submit(in(), nil); !errors.Is(err, ErrQueueFull) {
		t.Errorf("error = %v, want ErrQueueFull", err)
	}
}

func TestService_Replace(t *testing.T) {
	s := NewService(DefaultFixtures())
	id, err := s.Submit(&project.Input{Name: "New", Description: "d", Owner: "o"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Replace([]*Run{{ID: "z9", Name: "Zeta", Status: StatusPassed}})
	got := s.List("")
	if len(got) != 2 || got[0]["id"] != "z9" || got[1]["id"] != id {
		t.Errorf("List after Replace = %v", got)
	}
}

func TestService_ReplaceDuringSubmit(t *testing.T) {
	s := NewService(DefaultFixtures())
	const n = 200
	ids := make(chan string, n)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range n {
			id, err := s.Submit(&project.Input{Name: "n", Description: "d", Owner: "o"}, nil)
			if err != nil && !errors.Is(err, ErrQueueFull) {
				t.Error(err)
				return
			}
			if id != "" {
				ids <- id
			}
			// Drain so the queue never fills.
			select {
			case <-s.queue:
			default:
			}
		}
	}()
	for {
		select {
		case <-done:
			s.Replace(DefaultFixtures())
			close(ids)
			for id := range ids {
				if _, err := s.Get(id); err != nil {
					t.Errorf("submitted run %s lost: %v", id, err)
				}
			}
			return
		default:
			s.Replace(DefaultFixtures())
		}
	}
}

func TestService_ReplaceDuringProcess(t *testing.T) {
	s := NewService(DefaultFixtures())
	var ids []string
	for range 20 {
		id, err := s.Submit(&project.Input{Name: "n", Description: "d", Owner: "o"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go s.Run(ctx)
	deadline := time.Now().Add(5 * time.Second)
	for _, id := range ids {
		for {
			s.Replace(DefaultFixtures())
			r, err := s.Get(id)
			if err != nil {
				t.Fatalf("run %s lost: %v", id, err)
			}
			if r.Status.Done() {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("run %s stuck in %s", id, r.Status)
			}
		}
	}
}

func TestRun_Clone(t *testing.T) {
	r := &Run{ID: "a", Errors: []string{"e"}, Manifest: project.NewManifest("p", "1", []project.Artifact{{ID: "x"}})}
	c := r.Clone()
	c.Errors[0] = "changed"
	c.Manifest.Artifacts[0].ID = "changed"
	if r.Errors[0] != "e" || r.Manifest.Artifacts[0].ID != "x" {
		t.Error("Clone shares state with the original")
	}
}

func TestLoadFixtures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return p
	}
	t.Run("yaml", func(t *testing.T) {
		p := write("runs.yaml", "runs:\n  - id: a1\n    name: Alpha\n    status: PASSED\n  - id: d4\n    name: Delta\n")
		list, err := LoadFixtures(p)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 || list[1].Status != StatusPending {
			t.Errorf("list = %+v", list)
		}
	})
	t.Run("jsonl", func(t *testing.T) {
		p := write("runs.jsonl", "{\"id\":\"a1\",\"name\":\"Alpha\",\"status\":\"FAILED\"}\n")
		list, err := LoadFixtures(p)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].Status != StatusFailed {
			t.Errorf("list = %+v", list)
		}
	})
	errorCases := []struct {
		name, file, content string
	}{
		{"format", "runs.txt", "x"},
		{"status", "bad.yaml", "runs:\n  - id: a1\n    status: DONE\n"},
		{"duplicate", "dup.yaml", "runs:\n  - id: a1\n  - id: a1\n"},
		{"missing id", "noid.jsonl", "{\"name\":\"x\"}\n"},
		{"syntax", "broken.yaml", "runs: [\n"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadFixtures(write(tc.file, tc.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWatchFixtures(t *testing.T) {
	p := filepath.Join(t.TempDir(), "runs.yaml")
	if err := os.WriteFile(p, []byte("runs:\n  - id: a1\n    name: Alpha\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	list, err := LoadFixtures(p)
	if err != nil {
		t.Fatal(err)
	}
	s := NewService(list)
	if err := s.WatchFixtures(t.Context(), p); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("runs:\n  - id: b2\n    name: Beta\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if got := s.List(""); len(got) == 1 && got[0]["id"] == "b2" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("fixtures not reloaded: %v", s.List(""))
}
