package uml

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestToStarUML(t *testing.T) {
	classes := []Class{
		{Name: "Order", Attributes: []string{"id: str"}, Methods: []string{"total"}},
		{Name: "Line"},
		{Name: "Base"},
	}
	relations := []Relation{
		{Source: "Order", Target: "Line", Type: "composition"},
		{Source: "Order", Target: "Base", Type: "Inheritance"},
		{Source: "Line", Target: "Base", Type: "dependency"},
		{Source: "Order", Target: "Ghost", Type: "association"},
		{Source: "Line", Target: "Order", Type: "weird"},
	}
	p := ToStarUML(classes, relations)
	if p.Type != "Project" || len(p.OwnedElements) != 1 || p.OwnedElements[0].Type != "UMLModel" {
		t.Fatalf("project = %+v", p)
	}
	owned := p.OwnedElements[0].OwnedElements
	var types []string
	for _, e := range owned {
		types = append(types, e.Type)
	}
	want := "UMLClass,UMLClass,UMLClass,UMLAssociation,UMLGeneralization,UMLDependency,UMLAssociation"
	if got := strings.Join(types, ","); got != want {
		t.Fatalf("types = %s, want %s", got, want)
	}

	order := owned[0]
	if order.ID != "_class_1" || order.Attributes[0].ID != "_attr_101" || order.Operations[0].Name != "total" {
		t.Errorf("class = %+v", order)
	}
	comp := owned[3]
	if comp.End1.Reference.Ref != "_class_1" || comp.End2.Reference.Ref != "_class_2" || comp.End2.Aggregation != "composite" {
		t.Errorf("composition = %+v", comp)
	}
	gen := owned[4]
	if gen.Source.Ref != "_class_1" || gen.Target.Ref != "_class_3" {
		t.Errorf("generalization = %+v", gen)
	}
	if owned[6].End2.Aggregation != "none" {
		t.Errorf("unknown relation type = %+v", owned[6])
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{`"_type":"UMLClass"`, `"$ref":"_class_1"`} {
		if !strings.Contains(string(b), s) {
			t.Errorf("JSON missing %s: %s", s, b)
		}
	}
}

func TestDefaultModelArtifact(t *testing.T) {
	classes, relations := DefaultModel()
	section := ToArtifact(classes, relations)
	gotClasses, gotRelations, err := FromArtifact(section)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotClasses) != 3 || gotClasses[0].Name != "Project" || len(gotClasses[0].Methods) != 2 {
		t.Errorf("classes = %+v", gotClasses)
	}
	if len(gotRelations) != 2 || gotRelations[1].Type != "dependency" {
		t.Errorf("relations = %+v", gotRelations)
	}
}
