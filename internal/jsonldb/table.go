package jsonldb

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"sync"
)

// ErrNotFound is returned when no row matches.
var ErrNotFound = errors.New("row not found")

// Cloner is implemented by types that can clone themselves.
type Cloner[T any] interface {
	Clone() T
}

// Table is an in-memory, ordered set of rows.
type Table[T Cloner[T]] struct {
	mu   sync.RWMutex
	rows []T
}

// NewTable creates a table holding clones of rows.
func NewTable[T Cloner[T]](rows []T) *Table[T] {
	t := &Table[T]{}
	t.rows = cloneAll(rows)
	return t
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// All returns an iterator over clones of all rows, in insertion order.
func (t *Table[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		t.mu.RLock()
		defer t.mu.RUnlock()
		for _, row := range t.rows {
			if !yield(row.Clone()) {
				return
			}
		}
	}
}

// Find returns a clone of the first row matching fn.
func (t *Table[T]) Find(fn func(T) bool) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, row := range t.rows {
		if fn(row) {
			return row.Clone(), nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// Append adds a clone of row at the end.
func (t *Table[T]) Append(row T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, row.Clone())
}

// Modify applies fn to the first row matching match, under the write lock.
// The row passed to fn is the stored row; fn may change it in place.
func (t *Table[T]) Modify(match func(T) bool, fn func(T) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, row := range t.rows {
		if match(row) {
			c := row.Clone()
			if err := fn(c); err != nil {
				return err
			}
			t.rows[i] = c
			return nil
		}
	}
	return ErrNotFound
}

// Replace swaps the content of the table for clones of rows.
func (t *Table[T]) Replace(rows []T) {
	c := cloneAll(rows)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = c
}

// Update replaces the rows with the result of fn, under one write lock.
// fn receives the stored rows and must not keep them; the rows it returns
// are stored as clones.
func (t *Table[T]) Update(fn func(rows []T) []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = cloneAll(fn(slices.Clone(t.rows)))
}

// ReadJSONL decodes one row per non-empty line.
func ReadJSONL[T any](r io.Reader) ([]T, error) {
	var rows []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(b) == 0 || b[0] == '#' {
			continue
		}
		var row T
		if err := json.Unmarshal(b, &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal row on line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

// LoadJSONL reads rows from a JSONL file.
func LoadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the operator's flags
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	rows, err := ReadJSONL[T](f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func cloneAll[T Cloner[T]](rows []T) []T {
	out := slices.Grow([]T(nil), len(rows))
	for _, r := range rows {
		out = append(out, r.Clone())
	}
	return out
}
