package uml

import (
	"strconv"
	"strings"
)

// Ref points at another element of a StarUML model.
type Ref struct {
	Ref string `json:"$ref"`
}

// Element is a node of a StarUML .mdj document. Only the fields of its
// _type are set.
type Element struct {
	Type          string    `json:"_type"`
	ID            string    `json:"_id"`
	Name          string    `json:"name,omitempty"`
	Visibility    string    `json:"visibility,omitempty"`
	OwnedElements []Element `json:"ownedElements,omitempty"`
	Attributes    []Element `json:"attributes,omitempty"`
	Operations    []Element `json:"operations,omitempty"`
	Source        *Ref      `json:"source,omitempty"`
	Target        *Ref      `json:"target,omitempty"`
	End1          *Element  `json:"end1,omitempty"`
	End2          *Element  `json:"end2,omitempty"`
	Reference     *Ref      `json:"reference,omitempty"`
	Aggregation   string    `json:"aggregation,omitempty"`
}

// ToStarUML builds a minimal StarUML project: one model owning the classes
// and the relations between them. Relations naming an unknown class are
// dropped. Unknown relation types are associations.
func ToStarUML(classes []Class, relations []Relation) *Element {
	ids := make(map[string]string, len(classes))
	owned := make([]Element, 0, len(classes)+len(relations))
	for i, c := range classes {
		i++
		cid := mdjID("class", i)
		ids[c.Name] = cid
		el := Element{Type: "UMLClass", ID: cid, Name: c.Name}
		for j, a := range c.Attributes {
			el.Attributes = append(el.Attributes, Element{Type: "UMLAttribute", ID: mdjID("attr", i*100+j+1), Name: a, Visibility: "public"})
		}
		for j, m := range c.Methods {
			el.Operations = append(el.Operations, Element{Type: "UMLOperation", ID: mdjID("op", i*100+j+1), Name: m, Visibility: "public"})
		}
		owned = append(owned, el)
	}
	for k, r := range relations {
		k++
		src, ok1 := ids[r.Source]
		tgt, ok2 := ids[r.Target]
		if !ok1 || !ok2 {
			continue
		}
		switch t := strings.ToLower(r.Type); t {
		case "inheritance":
			owned = append(owned, Element{Type: "UMLGeneralization", ID: mdjID("gen", k), Source: &Ref{src}, Target: &Ref{tgt}})
		case "realization", "dependency":
			typ := "UMLRealization"
			if t == "dependency" {
				typ = "UMLDependency"
			}
			owned = append(owned, Element{Type: typ, ID: mdjID("rel", k), Source: &Ref{src}, Target: &Ref{tgt}})
		default:
			agg := "none"
			switch t {
			case "aggregation":
				agg = "shared"
			case "composition":
				agg = "composite"
			}
			owned = append(owned, Element{
				Type: "UMLAssociation",
				ID:   mdjID("assoc", k),
				End1: &Element{Type: "UMLAssociationEnd", ID: mdjID("end", k*10+1), Reference: &Ref{src}, Aggregation: "none"},
				End2: &Element{Type: "UMLAssociationEnd", ID: mdjID("end", k*10+2), Reference: &Ref{tgt}, Aggregation: agg},
			})
		}
	}
	return &Element{
		Type: "Project",
		ID:   mdjID("proj", 1),
		Name: "Signum UML",
		OwnedElements: []Element{{
			Type:          "UMLModel",
			ID:            mdjID("model", 1),
			Name:          "Model",
			OwnedElements: owned,
		}},
	}
}

func mdjID(prefix string, n int) string {
	return "_" + prefix + "_" + strconv.Itoa(n)
}
