package jsonldb

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
)

type testRow struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (r *testRow) Clone() *testRow {
	c := *r
	return &c
}

func TestTable(t *testing.T) {
	table := NewTable([]*testRow{{ID: 1, Name: "One"}})
	table.Append(&testRow{ID: 2, Name: "Two"})

	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}

	all := slices.Collect(table.All())
	if len(all) != 2 || all[0].Name != "One" || all[1].Name != "Two" {
		t.Errorf("All() = %+v", all)
	}

	// Clones are returned, not the stored rows.
	all[0].Name = "changed"
	got, err := table.Find(func(r *testRow) bool { return r.ID == 1 })
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "One" {
		t.Errorf("stored row was modified through a clone: %q", got.Name)
	}

	if err := table.Modify(func(r *testRow) bool { return r.ID == 2 }, func(r *testRow) error {
		r.Name = "Deux"
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	got, _ = table.Find(func(r *testRow) bool { return r.ID == 2 })
	if got.Name != "Deux" {
		t.Errorf("Modify did not apply: %q", got.Name)
	}

	errBoom := errors.New("boom")
	if err := table.Modify(func(r *testRow) bool { return r.ID == 2 }, func(r *testRow) error {
		r.Name = "lost"
		return errBoom
	}); !errors.Is(err, errBoom) {
		t.Errorf("Modify error = %v", err)
	}
	got, _ = table.Find(func(r *testRow) bool { return r.ID == 2 })
	if got.Name != "Deux" {
		t.Errorf("failed Modify leaked a change: %q", got.Name)
	}

	if err := table.Modify(func(r *testRow) bool { return r.ID == 9 }, func(*testRow) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Modify missing row error = %v", err)
	}
	if _, err := table.Find(func(r *testRow) bool { return r.ID == 9 }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find missing row error = %v", err)
	}

	table.Replace([]*testRow{{ID: 3, Name: "Three"}})
	if table.Len() != 1 {
		t.Errorf("Replace: Len() = %d", table.Len())
	}
}

func TestTable_Concurrent(t *testing.T) {
	table := NewTable[*testRow](nil)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table.Append(&testRow{ID: i})
			for range table.All() {
			}
		}()
	}
	wg.Wait()
	if table.Len() != 50 {
		t.Errorf("Len() = %d, want 50", table.Len())
	}
}

func TestTable_Update(t *testing.T) {
	table := NewTable([]*testRow{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	kept := &testRow{ID: 3, Name: "c"}
	table.Update(func(rows []*testRow) []*testRow {
		return append(slices.DeleteFunc(rows, func(r *testRow) bool { return r.ID == 1 }), kept)
	})
	kept.Name = "changed"
	var got []string
	for r := range table.All() {
		got = append(got, r.Name)
	}
	if strings.Join(got, ",") != "b,c" {
		t.Errorf("rows = %v, want b,c", got)
	}
}

func TestTable_UpdateKeepsConcurrentAppends(t *testing.T) {
	table := NewTable[*testRow](nil)
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			table.Append(&testRow{ID: i})
		}()
		go func() {
			defer wg.Done()
			table.Update(func(rows []*testRow) []*testRow { return rows })
		}()
	}
	wg.Wait()
	if table.Len() != 100 {
		t.Errorf("Len() = %d, want 100", table.Len())
	}
}

func TestReadJSONL(t *testing.T) {
	in := "{\"id\":1,\"name\":\"One\"}\n\n# comment\n{\"id\":2,\"name\":\"Two\"}\n"
	rows, err := ReadJSONL[testRow](strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1].Name != "Two" {
		t.Errorf("rows = %+v", rows)
	}

	_, err = ReadJSONL[testRow](strings.NewReader("{\"id\":1}\nnot json\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line 2 error, got %v", err)
	}
}

func TestLoadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\":7,\"name\":\"Seven\"}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	rows, err := LoadJSONL[testRow](path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != 7 {
		t.Errorf("rows = %+v", rows)
	}
	if _, err := LoadJSONL[testRow](filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}
