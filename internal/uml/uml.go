// Package uml converts class models to Mermaid class diagrams.
package uml

import (
	"fmt"
	"strings"
)

// Class is a UML class with attribute and method names.
type Class struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes,omitempty"`
	Methods    []string `json:"methods,omitempty"`
}

// Relation links two classes by name.
type Relation struct {
	Source string `json:"source"`
	Target string `json:"target"`
	// Type is one of association, inheritance, aggregation, composition,
	// dependency or realization. Unknown types render as association.
	Type string `json:"type"`
}

// mermaidInit is the dark theme header with neon borders.
const mermaidInit = "%%{init: { 'theme': 'dark', 'themeVariables': {\n" +
	"  'primaryColor': '#000000',\n" +
	"  'primaryBorderColor': '#00f0ff',\n" +
	"  'lineColor': '#00f0ff',\n" +
	"  'tertiaryBorderColor': '#00f0ff',\n" +
	"  'fontFamily': 'Inter,JetBrains Mono,monospace'\n" +
	"}} }%%"

// ToMermaid renders classes and relations as a Mermaid classDiagram.
func ToMermaid(classes []Class, relations []Relation) string {
	lines := []string{mermaidInit, "classDiagram"}
	for _, c := range classes {
		lines = append(lines, "class "+c.Name)
		if len(c.Attributes) > 0 || len(c.Methods) > 0 {
			lines = append(lines, c.Name+" : ")
		}
		for _, a := range c.Attributes {
			lines = append(lines, c.Name+" : "+a)
		}
		for _, m := range c.Methods {
			lines = append(lines, c.Name+" : "+m+"()")
		}
	}
	for _, r := range relations {
		lines = append(lines, relationLine(r))
	}
	return strings.Join(lines, "\n") + "\n"
}

func relationLine(r Relation) string {
	src, tgt := r.Source, r.Target
	switch strings.ToLower(r.Type) {
	case "inheritance":
		return tgt + " <|-- " + src
	case "aggregation":
		return src + " o-- " + tgt
	case "composition":
		return src + " *-- " + tgt
	case "dependency":
		return src + " ..> " + tgt
	case "realization":
		return tgt + " <|.. " + src
	default:
		return src + " --> " + tgt
	}
}

// FromArtifact decodes the "classes" and "relations" lists of a UML
// artifact section. Entries that are not objects are skipped.
func FromArtifact(artifact map[string]any) ([]Class, []Relation, error) {
	var classes []Class
	var relations []Relation
	if raw, ok := artifact["classes"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, nil, fmt.Errorf("uml classes must be a list, got %T", raw)
		}
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			classes = append(classes, Class{
				Name:       str(m["name"]),
				Attributes: strs(m["attributes"]),
				Methods:    strs(m["methods"]),
			})
		}
	}
	if raw, ok := artifact["relations"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, nil, fmt.Errorf("uml relations must be a list, got %T", raw)
		}
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			relations = append(relations, Relation{
				Source: str(m["source"]),
				Target: str(m["target"]),
				Type:   str(m["type"]),
			})
		}
	}
	return classes, relations, nil
}

func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func strs(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, x := range list {
		out = append(out, str(x))
	}
	return out
}

// DefaultModel is the class model generated for a project that supplies
// none.
func DefaultModel() ([]Class, []Relation) {
	classes := []Class{
		{Name: "Project", Attributes: []string{"name: str", "description: str", "owner: str"}, Methods: []string{"build", "deploy"}},
		{Name: "Owner", Attributes: []string{"name: str"}, Methods: []string{"notify"}},
		{Name: "Artifact", Attributes: []string{"id: str", "type: str"}, Methods: []string{"serialize"}},
	}
	relations := []Relation{
		{Source: "Project", Target: "Owner", Type: "association"},
		{Source: "Artifact", Target: "Project", Type: "dependency"},
	}
	return classes, relations
}

// ToArtifact returns the model as a run's uml section, the inverse of
// FromArtifact.
func ToArtifact(classes []Class, relations []Relation) map[string]any {
	cl := make([]any, 0, len(classes))
	for _, c := range classes {
		cl = append(cl, map[string]any{
			"name":       c.Name,
			"attributes": anySlice(c.Attributes),
			"methods":    anySlice(c.Methods),
		})
	}
	rl := make([]any, 0, len(relations))
	for _, r := range relations {
		rl = append(rl, map[string]any{"source": r.Source, "target": r.Target, "type": r.Type})
	}
	return map[string]any{"classes": cl, "relations": rl}
}

func anySlice(s []string) []any {
	out := make([]any, 0, len(s))
	for _, x := range s {
		out = append(out, x)
	}
	return out
}
