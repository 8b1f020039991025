package graph

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func resultHasError(r ValidationResult, substr string) bool {
	for _, e := range r.Errors {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func resultHasWarning(r ValidationResult, substr string) bool {
	for _, w := range r.Warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestValidateAll_ValidGraph(t *testing.T) {
	r := ValidateAll(buildBracket())
	if len(r.Errors) != 0 || len(r.Warnings) != 0 {
		t.Errorf("expected clean result, got %v / %v", r.Errors, r.Warnings)
	}
}

func TestValidateAll_EmptyGraph(t *testing.T) {
	r := ValidateAll(New())
	if len(r.Errors) != 0 || len(r.Warnings) != 0 {
		t.Errorf("expected clean result for empty graph")
	}
}

func TestValidateAll_Dimensions(t *testing.T) {
	tests := []struct {
		name string
		data NodeData
		want []string
	}{
		{"zero box", BoxData{Size: Vec3{0, 1, 1}}, []string{"box size X is 0.0000"}},
		{"negative box", BoxData{Size: Vec3{1, -2, 1}}, []string{"box size Y is -2.0000"}},
		{"flat box", BoxData{}, []string{"box size X", "box size Y", "box size Z"}},
		{"zero cylinder", CylinderData{Height: 0, Radius: 1}, []string{"cylinder height is 0.0000"}},
		{"negative radius", CylinderData{Height: 1, Radius: -1}, []string{"cylinder radius is -1.0000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildBracket()
			g.Get(NewNodeID("box/plate")).Data = tt.data
			r := ValidateAll(g)
			for _, want := range tt.want {
				if !resultHasError(r, want) {
					t.Errorf("expected %q, got %v", want, r.Errors)
				}
			}
		})
	}
}

func TestValidateAll_Segments(t *testing.T) {
	g := buildBracket()
	hole := g.Get(NewNodeID("cylinder/hole"))

	hole.Data = CylinderData{Height: 10, Radius: 3, Segments: 2}
	if r := ValidateAll(g); !resultHasWarning(r, "cylinder has 2 segments") {
		t.Errorf("expected coarse warning, got %v", r.Warnings)
	}

	hole.Data = CylinderData{Height: 10, Radius: 3, Segments: 1000}
	if r := ValidateAll(g); !resultHasWarning(r, "slows tessellation") {
		t.Errorf("expected fine warning, got %v", r.Warnings)
	}
}

func TestValidateAll_IdentityPlacement(t *testing.T) {
	g := buildBracket()
	g.Get(NewNodeID("place/hole")).Data = TransformData{Rotation: &Vec3{}}
	r := ValidateAll(g)
	if !resultHasWarning(r, "no translation or rotation") {
		t.Errorf("expected identity warning, got %v", r.Warnings)
	}
	if len(r.Errors) != 0 {
		t.Errorf("identity placement should not be an error")
	}
}

func TestValidateAll_Color(t *testing.T) {
	for _, c := range []string{"#fff", "#4488CC"} {
		g := buildBracket()
		g.MustLookup("bracket").Data = ShapeData{Color: c}
		if r := ValidateAll(g); len(r.Errors) != 0 {
			t.Errorf("color %q: unexpected errors %v", c, r.Errors)
		}
	}
	for _, c := range []string{"red", "#12345", "#gg0000"} {
		g := buildBracket()
		g.MustLookup("bracket").Data = ShapeData{Color: c}
		if r := ValidateAll(g); !resultHasError(r, "is not #RRGGBB") {
			t.Errorf("color %q: expected error", c)
		}
	}
}

func TestValidateAll_OrphanIsWarning(t *testing.T) {
	g := buildBracket()
	g.AddNode(&Node{ID: NewNodeID("box/spare"), Kind: NodePrimitive, Data: BoxData{Size: Vec3{1, 1, 1}}})
	r := ValidateAll(g)
	if !resultHasWarning(r, "orphan") {
		t.Errorf("expected orphan warning")
	}
	if len(r.Errors) != 0 {
		t.Errorf("unexpected errors %v", r.Errors)
	}
}
