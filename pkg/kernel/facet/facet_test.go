package facet

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/brepview/pkg/kernel"
)

func TestBox(t *testing.T) {
	k := New()
	if k.Name() != "facet" {
		t.Errorf("Name() = %q", k.Name())
	}
	mesh, err := k.ToMesh(k.Box(100, 50, 25))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if got := mesh.TriangleCount(); got != 12 {
		t.Errorf("box triangle count = %d, want 12", got)
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}

	// Every facet normal points away from the box center.
	for tri := 0; tri < mesh.TriangleCount(); tri++ {
		v := mesh.Vertex(int(mesh.Indices[3*tri]))
		n := mesh.Normals[9*tri : 9*tri+3]
		d := float32(0)
		for a, c := range [3]float32{50, 25, 12.5} {
			d += (v[a] - c) * n[a]
		}
		if d <= 0 {
			t.Errorf("triangle %d normal %v points inward", tri, n)
		}
	}
}

func TestBoxRejectsNonPositive(t *testing.T) {
	k := New()
	if _, err := k.ToMesh(k.Translate(k.Box(0, 1, 1), 1, 1, 1)); err == nil {
		t.Error("expected error for zero box size")
	}
}

func TestCylinder(t *testing.T) {
	k := New()
	tests := []struct {
		segments, want int
	}{
		{8, 32},
		{0, 4 * DefaultSegments},
		{2, 12},
	}
	for _, tt := range tests {
		mesh, err := k.ToMesh(k.Cylinder(10, 2, tt.segments))
		if err != nil {
			t.Fatalf("ToMesh failed: %v", err)
		}
		if got := mesh.TriangleCount(); got != tt.want {
			t.Errorf("segments %d: %d triangles, want %d", tt.segments, got, tt.want)
		}
	}

	min, max := k.Cylinder(10, 2, 16).BoundingBox()
	if math.Abs(min[2]+5) > 1e-9 || math.Abs(max[2]-5) > 1e-9 {
		t.Errorf("cylinder z range = [%f, %f], want [-5, 5]", min[2], max[2])
	}
	if math.Abs(max[0]-2) > 1e-9 {
		t.Errorf("cylinder max x = %f, want 2", max[0])
	}
}

func TestTranslateAndRotate(t *testing.T) {
	k := New()
	box := k.Translate(k.Box(10, 10, 10), 100, 200, 300)
	min, max := box.BoundingBox()
	if min != [3]float64{100, 200, 300} || max != [3]float64{110, 210, 310} {
		t.Errorf("translated bounds = %v, %v", min, max)
	}

	rotated := k.Rotate(k.Box(100, 10, 10), 0, 0, 90)
	min, max = rotated.BoundingBox()
	const tol = 1e-9
	if math.Abs((max[0]-min[0])-10) > tol {
		t.Errorf("rotated X extent = %f, want 10", max[0]-min[0])
	}
	if math.Abs((max[1]-min[1])-100) > tol {
		t.Errorf("rotated Y extent = %f, want 100", max[1]-min[1])
	}
}

func TestUnionConcatenates(t *testing.T) {
	k := New()
	u := k.Union(k.Box(1, 1, 1), k.Translate(k.Box(1, 1, 1), 5, 0, 0))
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() != 24 {
		t.Errorf("union triangle count = %d, want 24", mesh.TriangleCount())
	}
}

func TestUnsupportedBooleans(t *testing.T) {
	k := New()
	for name, s := range map[string]kernel.Solid{
		"difference":   k.Difference(k.Box(1, 1, 1), k.Box(1, 1, 1)),
		"intersection": k.Intersection(k.Box(1, 1, 1), k.Box(1, 1, 1)),
	} {
		_, err := k.ToMesh(s)
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s: err = %v, want ErrUnsupported", name, err)
		}
	}
}
