// Package exports renders a run into downloadable files.
//
// Exports are computed in memory on each request; nothing is written to disk.
package exports

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/signum-hq/signum/internal/aegis"
	"github.com/signum-hq/signum/internal/gantt"
	"github.com/signum-hq/signum/internal/project"
	"github.com/signum-hq/signum/internal/runs"
	"github.com/signum-hq/signum/internal/uml"
)

// Kind names an export format.
type Kind string

// Export kinds.
const (
	KindManifest Kind = "manifest"
	KindNexusOps Kind = "nexus_ops"
	KindReport   Kind = "report"
	KindUML      Kind = "uml"
	KindUMLMDJ   Kind = "uml_mdj"
	KindGantt    Kind = "gantt"
)

// Kinds lists the available export kinds.
func Kinds() []Kind {
	return []Kind{KindManifest, KindNexusOps, KindReport, KindUML, KindUMLMDJ, KindGantt}
}

// mermaidType is the content type of Mermaid sources.
const mermaidType = "text/vnd.mermaid; charset=utf-8"

// ErrUnknownKind is returned for an unsupported export kind.
var ErrUnknownKind = errors.New("unknown export kind")

// ParseKind normalizes s ("Nexus-Ops" is nexus_ops).
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// NexusOps is the consolidated artifact payload. Missing sections are empty
// objects.
type NexusOps struct {
	ProjectID string         `json:"project_id"`
	Backlog   map[string]any `json:"backlog"`
	Docs      map[string]any `json:"docs"`
	UML       map[string]any `json:"uml"`
	Gantt     map[string]any `json:"gantt"`
}

// Build renders run as kind.
func Build(run *runs.Run, kind Kind) (*File, error) {
	switch kind {
	case KindManifest:
		m := run.Manifest
		if m == nil {
			m = project.NewManifest(run.Name, project.ManifestVersion, nil)
		}
		return jsonFile("manifest.json", m)
	case KindNexusOps:
		return jsonFile("nexus_ops.json", nexusOps(run))
	case KindReport:
		return jsonFile("report.json", run.Report())
	case KindUML, KindUMLMDJ:
		classes, relations, err := uml.FromArtifact(bundle(run).UML)
		if err != nil {
			return nil, err
		}
		if kind == KindUMLMDJ {
			return jsonFile("uml.mdj", uml.ToStarUML(classes, relations))
		}
		return &File{Name: "uml.mmd", ContentType: mermaidType, Data: []byte(uml.ToMermaid(classes, relations))}, nil
	case KindGantt:
		items, err := gantt.ItemsFromArtifact(bundle(run).Gantt)
		if err != nil {
			return nil, err
		}
		tasks, err := gantt.Schedule(items, run.CreatedAt)
		if err != nil {
			return nil, err
		}
		return &File{Name: "gantt.mmd", ContentType: mermaidType, Data: []byte(gantt.ToMermaid(tasks, run.Name))}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func bundle(run *runs.Run) *aegis.Bundle {
	if run.Bundle == nil {
		return &aegis.Bundle{}
	}
	return run.Bundle
}

func nexusOps(run *runs.Run) *NexusOps {
	b := bundle(run)
	return &NexusOps{
		ProjectID: run.ID,
		Backlog:   orEmpty(b.Backlog),
		Docs:      orEmpty(b.Docs),
		UML:       orEmpty(b.UML),
		Gantt:     orEmpty(b.Gantt),
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func jsonFile(name string, v any) (*File, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return &File{Name: name, ContentType: "application/json", Data: buf.Bytes()}, nil
}
