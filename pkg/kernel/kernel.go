// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, facet) build solids and triangulate them for the
// tessellator, which recovers faces, edges and vertices from the triangles.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface. Failures surface from
// ToMesh; construction methods never return errors.
type Kernel interface {
	// Name identifies the kernel in logs and part metadata.
	Name() string

	// Primitives. Boxes have their minimum corner at the origin; cylinders
	// are centered on it with their axis along Z.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
