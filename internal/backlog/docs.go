package backlog

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/signum-hq/signum/internal/project"
)

//go:embed templates/*.md.tmpl
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.md.tmpl"))

// docsData is the data passed to the docs templates.
type docsData struct {
	Project *project.Input
	Goals   []Goal
}

// Docs renders one Markdown document per template, keyed by the template
// name without extension: intro, usage and srs.
func Docs(in *project.Input, goals []Goal) (map[string]any, error) {
	data := docsData{Project: in, Goals: goals}
	out := map[string]any{}
	for _, t := range templates.Templates() {
		var sb strings.Builder
		if err := t.Execute(&sb, data); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", t.Name(), err)
		}
		out[strings.TrimSuffix(path.Base(t.Name()), ".md.tmpl")] = sb.String()
	}
	return out, nil
}
