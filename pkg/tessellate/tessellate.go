// Package tessellate walks a scene graph and produces one displayable
// part per shape: the kernel triangle mesh plus the face, edge and vertex
// topology recovered from it.
package tessellate

import (
	"fmt"

	"github.com/chazu/brepview/pkg/graph"
	"github.com/chazu/brepview/pkg/kernel"
)

// Part is one tessellated shape.
type Part struct {
	Name     string
	Color    string // "#RRGGBB" or empty
	Kernel   string // name of the kernel that built the mesh
	Mesh     *kernel.Mesh
	Topology *Topology
}

// Tessellate builds the solid under every shape root with the provided
// geometry kernel, triangulates it and extracts its topology. The
// tessellator is read-only and never mutates the graph.
func Tessellate(g *graph.SceneGraph, k kernel.Kernel, opts Options) ([]*Part, error) {
	if g == nil {
		return nil, nil
	}

	var parts []*Part
	for _, shape := range g.Shapes() {
		p, err := tessellateShape(g, k, shape, opts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: shape %q: %w", shape.Name, err)
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func tessellateShape(g *graph.SceneGraph, k kernel.Kernel, shape *graph.Node, opts Options) (*Part, error) {
	children := g.Children(shape)
	if len(children) != 1 {
		return nil, fmt.Errorf("shape has %d solids, want 1", len(children))
	}
	solid, err := buildSolid(g, k, children[0])
	if err != nil {
		return nil, err
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}
	mesh.Name = shape.Name

	p := &Part{Name: shape.Name, Kernel: k.Name(), Mesh: mesh, Topology: Extract(mesh, opts)}
	if sd, ok := shape.Data.(graph.ShapeData); ok {
		p.Color = sd.Color
	}
	return p, nil
}

// buildSolid recursively converts a node and its children into a kernel
// solid.
func buildSolid(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return handlePrimitive(k, n)
	case graph.NodeTransform:
		return handleTransform(g, k, n)
	case graph.NodeBoolean:
		return handleBoolean(g, k, n)
	case graph.NodeShape:
		return nil, fmt.Errorf("shape %q nested inside another solid", n.Name)
	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handlePrimitive creates geometry for a primitive node.
func handlePrimitive(k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	switch data := n.Data.(type) {
	case graph.BoxData:
		return k.Box(data.Size.X, data.Size.Y, data.Size.Z), nil
	case graph.CylinderData:
		segments := data.Segments
		if segments == 0 {
			segments = graph.DefaultCylinderSegments
		}
		return k.Cylinder(data.Height, data.Radius, segments), nil
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
}

// handleTransform builds the child, then rotates and translates it.
func handleTransform(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := g.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("transform node %s has %d children, want 1", n.ID.Short(), len(children))
	}
	solid, err := buildSolid(g, k, children[0])
	if err != nil {
		return nil, err
	}

	if r := td.Rotation; r != nil && !r.IsZero() {
		solid = k.Rotate(solid, r.X, r.Y, r.Z)
	}
	if t := td.Translation; t != nil && !t.IsZero() {
		solid = k.Translate(solid, t.X, t.Y, t.Z)
	}
	return solid, nil
}

// handleBoolean folds the node's operation over its children left to
// right.
func handleBoolean(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	bd, ok := n.Data.(graph.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := g.Children(n)
	if len(children) < 2 {
		return nil, fmt.Errorf("%s node %s has %d operands, want at least 2", bd.Op, n.ID.Short(), len(children))
	}

	var op func(a, b kernel.Solid) kernel.Solid
	switch bd.Op {
	case graph.OpUnion:
		op = k.Union
	case graph.OpDifference:
		op = k.Difference
	case graph.OpIntersection:
		op = k.Intersection
	default:
		return nil, fmt.Errorf("boolean node %s has unknown op %v", n.ID.Short(), bd.Op)
	}

	acc, err := buildSolid(g, k, children[0])
	if err != nil {
		return nil, err
	}
	for _, c := range children[1:] {
		s, err := buildSolid(g, k, c)
		if err != nil {
			return nil, err
		}
		acc = op(acc, s)
	}
	return acc, nil
}
