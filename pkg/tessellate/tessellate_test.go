package tessellate_test

import (
	"errors"
	"testing"

	"github.com/chazu/brepview/pkg/graph"
	"github.com/chazu/brepview/pkg/kernel"
	"github.com/chazu/brepview/pkg/kernel/facet"
	"github.com/chazu/brepview/pkg/kernel/sdfx"
	"github.com/chazu/brepview/pkg/tessellate"
)

// newKernel returns an exact facet kernel so topology counts are stable.
func newKernel() kernel.Kernel {
	return facet.New()
}

func makeBox(name string, x, y, z float64) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID("box/" + name),
		Kind: graph.NodePrimitive,
		Data: graph.BoxData{Size: graph.Vec3{X: x, Y: y, Z: z}},
	}
}

func makeCylinder(name string, h, r float64, segments int) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID("cylinder/" + name),
		Kind: graph.NodePrimitive,
		Data: graph.CylinderData{Height: h, Radius: r, Segments: segments},
	}
}

// makePlace creates a transform node with a translation.
func makePlace(name string, tx, ty, tz float64, child graph.NodeID) *graph.Node {
	t := graph.Vec3{X: tx, Y: ty, Z: tz}
	return &graph.Node{
		ID:       graph.NewNodeID("place/" + name),
		Kind:     graph.NodeTransform,
		Children: []graph.NodeID{child},
		Data:     graph.TransformData{Translation: &t},
	}
}

func makeBoolean(name string, op graph.BooleanOp, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID(op.String() + "/" + name),
		Kind:     graph.NodeBoolean,
		Children: children,
		Data:     graph.BooleanData{Op: op},
	}
}

// addShape registers a named shape root over solid.
func addShape(g *graph.SceneGraph, name, color string, solid graph.NodeID) {
	id := graph.NewNodeID("shape/" + name)
	g.AddNode(&graph.Node{
		ID: id, Kind: graph.NodeShape, Name: name,
		Children: []graph.NodeID{solid},
		Data:     graph.ShapeData{Color: color},
	})
	g.AddRoot(id)
}

func TestSingleBox(t *testing.T) {
	g := graph.New()
	box := makeBox("shelf", 600, 300, 18)
	g.AddNode(box)
	addShape(g, "shelf", "#aa8855", box.ID)

	parts, err := tessellate.Tessellate(g, newKernel(), tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}

	p := parts[0]
	if p.Name != "shelf" || p.Mesh.Name != "shelf" {
		t.Errorf("names = %q / %q, want shelf", p.Name, p.Mesh.Name)
	}
	if p.Color != "#aa8855" || p.Kernel != "facet" {
		t.Errorf("color = %q, kernel = %q", p.Color, p.Kernel)
	}
	if got := p.Topology.FaceCount(); got != 6 {
		t.Errorf("faces = %d, want 6", got)
	}
	if got := p.Topology.EdgeCount(); got != 12 {
		t.Errorf("edges = %d, want 12", got)
	}
	if got := p.Topology.VertexCount(); got != 8 {
		t.Errorf("vertices = %d, want 8", got)
	}
}

func TestPlacementMovesGeometry(t *testing.T) {
	g := graph.New()
	box := makeBox("shelf", 100, 50, 10)
	place := makePlace("shelf", 200, 100, 50, box.ID)
	g.AddNode(box)
	g.AddNode(place)
	addShape(g, "shelf", "", place.ID)

	parts, err := tessellate.Tessellate(g, newKernel(), tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	min, max, ok := parts[0].Mesh.Bounds()
	if !ok {
		t.Fatal("mesh should not be empty")
	}
	if min != [3]float32{200, 100, 50} || max != [3]float32{300, 150, 60} {
		t.Errorf("bounds = %v - %v", min, max)
	}
}

func TestUnionOfDisjointSolids(t *testing.T) {
	g := graph.New()
	a := makeBox("a", 10, 10, 10)
	b := makeBox("b", 10, 10, 10)
	pb := makePlace("b", 50, 0, 0, b.ID)
	u := makeBoolean("ab", graph.OpUnion, a.ID, pb.ID)
	for _, n := range []*graph.Node{a, b, pb, u} {
		g.AddNode(n)
	}
	addShape(g, "pair", "", u.ID)

	parts, err := tessellate.Tessellate(g, newKernel(), tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	topo := parts[0].Topology
	if topo.FaceCount() != 12 || topo.EdgeCount() != 24 || topo.VertexCount() != 16 {
		t.Errorf("faces/edges/vertices = %d/%d/%d, want 12/24/16",
			topo.FaceCount(), topo.EdgeCount(), topo.VertexCount())
	}
}

func TestMultipleShapesKeepRootOrder(t *testing.T) {
	g := graph.New()
	box := makeBox("b", 1, 1, 1)
	cyl := makeCylinder("c", 2, 1, 16)
	g.AddNode(box)
	g.AddNode(cyl)
	addShape(g, "second", "", cyl.ID)
	addShape(g, "first", "", box.ID)

	parts, err := tessellate.Tessellate(g, newKernel(), tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 2 || parts[0].Name != "second" || parts[1].Name != "first" {
		t.Fatalf("unexpected parts %v", parts)
	}
	if got := parts[0].Topology.FaceCount(); got != 3 {
		t.Errorf("cylinder faces = %d, want 3", got)
	}
}

func TestUnsupportedOperationFails(t *testing.T) {
	g := graph.New()
	a := makeBox("a", 10, 10, 10)
	c := makeCylinder("hole", 20, 2, 16)
	d := makeBoolean("a-hole", graph.OpDifference, a.ID, c.ID)
	for _, n := range []*graph.Node{a, c, d} {
		g.AddNode(n)
	}
	addShape(g, "drilled", "", d.ID)

	_, err := tessellate.Tessellate(g, newKernel(), tessellate.Options{})
	if !errors.Is(err, facet.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestDifferenceWithSdfx(t *testing.T) {
	g := graph.New()
	a := makeBox("a", 20, 20, 20)
	c := makeCylinder("hole", 40, 5, 0)
	pc := makePlace("hole", 10, 10, 10, c.ID)
	d := makeBoolean("a-hole", graph.OpDifference, a.ID, pc.ID)
	for _, n := range []*graph.Node{a, c, pc, d} {
		g.AddNode(n)
	}
	addShape(g, "drilled", "", d.ID)

	parts, err := tessellate.Tessellate(g, sdfx.New(sdfx.WithMeshCells(40)), tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	topo := parts[0].Topology
	if topo.FaceCount() < 7 {
		t.Errorf("faces = %d, want at least the 6 box sides and the bore", topo.FaceCount())
	}
	if err := topo.Faces.Validate(); err != nil {
		t.Errorf("face stream invalid: %v", err)
	}
}

func TestEmptyGraph(t *testing.T) {
	parts, err := tessellate.Tessellate(graph.New(), newKernel(), tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 0 {
		t.Fatalf("expected 0 parts, got %d", len(parts))
	}
	if parts, _ := tessellate.Tessellate(nil, newKernel(), tessellate.Options{}); parts != nil {
		t.Fatal("nil graph should produce nil")
	}
}

func TestNonShapeRootsIgnored(t *testing.T) {
	g := graph.New()
	box := makeBox("loose", 1, 1, 1)
	g.AddNode(box)
	g.AddRoot(box.ID)

	parts, err := tessellate.Tessellate(g, newKernel(), tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 0 {
		t.Fatalf("expected 0 parts, got %d", len(parts))
	}
}
