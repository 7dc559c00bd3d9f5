package runs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/signum-hq/signum/internal/jsonldb"
	"gopkg.in/yaml.v3"
)

// DefaultFixtures are the runs shown when no fixture file is configured.
func DefaultFixtures() []*Run {
	return []*Run{
		{ID: "a1", Name: "Alpha", Status: StatusPassed},
		{ID: "b2", Name: "Beta", Status: StatusFailed},
		{ID: "c3", Name: "Gamma", Status: StatusRunning},
	}
}

// fixtureFile is the YAML fixture layout.
type fixtureFile struct {
	Runs []*Run `yaml:"runs"`
}

// LoadFixtures reads runs from a .yaml, .yml or .jsonl file.
func LoadFixtures(path string) ([]*Run, error) {
	var list []*Run
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the -runs flag
		if err != nil {
			return nil, fmt.Errorf("failed to read fixtures: %w", err)
		}
		var f fixtureFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		list = f.Runs
	case ".jsonl":
		loaded, err := jsonldb.LoadJSONL[Run](path)
		if err != nil {
			return nil, err
		}
		list = make([]*Run, len(loaded))
		for i := range loaded {
			list[i] = &loaded[i]
		}
	default:
		return nil, fmt.Errorf("unsupported fixture format %q", ext)
	}
	if err := validateFixtures(list); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

func validateFixtures(list []*Run) error {
	seen := make(map[string]struct{}, len(list))
	for i, r := range list {
		if r == nil {
			return fmt.Errorf("run #%d is empty", i+1)
		}
		if r.ID == "" {
			return fmt.Errorf("run #%d: id is required", i+1)
		}
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("run %q is duplicated", r.ID)
		}
		seen[r.ID] = struct{}{}
		if r.Status == "" {
			r.Status = StatusPending
		}
		switch r.Status {
		case StatusPending, StatusRunning, StatusPassed, StatusFailed:
		default:
			return fmt.Errorf("run %q: unknown status %q", r.ID, r.Status)
		}
	}
	return nil
}
