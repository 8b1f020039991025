// Package facet implements kernel.Kernel with exact planar facets. Boxes
// and cylinders are built as triangle lists and transformed directly, so
// flat faces stay flat and edges stay sharp. Union concatenates disjoint
// solids; difference and intersection need the sdfx kernel.
package facet

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/brepview/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Compile-time interface check.
var _ kernel.Kernel = (*FacetKernel)(nil)

// DefaultSegments is used for cylinders that leave segments unset.
const DefaultSegments = 32

// ErrUnsupported is returned from ToMesh for solids built with an
// operation this kernel cannot evaluate exactly.
var ErrUnsupported = errors.New("facet: unsupported operation")

type triangle [3]mgl64.Vec3

func (t triangle) normal() mgl64.Vec3 {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	if l := n.Len(); l > 0 {
		return n.Mul(1 / l)
	}
	return n
}

type solid struct {
	tris []triangle
	err  error
}

// BoundingBox returns the axis-aligned bounding box of the facets.
func (s *solid) BoundingBox() (min, max [3]float64) {
	if len(s.tris) == 0 {
		return min, max
	}
	min = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, t := range s.tris {
		for _, v := range t {
			for a := 0; a < 3; a++ {
				min[a] = math.Min(min[a], v[a])
				max[a] = math.Max(max[a], v[a])
			}
		}
	}
	return min, max
}

// FacetKernel implements kernel.Kernel over exact triangle lists.
type FacetKernel struct{}

// New returns a new FacetKernel.
func New() *FacetKernel {
	return &FacetKernel{}
}

func unwrap(s kernel.Solid) *solid {
	return s.(*solid)
}

func failed(err error) kernel.Solid {
	return &solid{err: err}
}

// quad appends the two triangles of a, b, c, d in counter-clockwise order.
func quad(tris []triangle, a, b, c, d mgl64.Vec3) []triangle {
	return append(tris, triangle{a, b, c}, triangle{a, c, d})
}

// Name returns "facet".
func (k *FacetKernel) Name() string { return "facet" }

// Box creates a box with its minimum corner at the origin.
func (k *FacetKernel) Box(x, y, z float64) kernel.Solid {
	if x <= 0 || y <= 0 || z <= 0 {
		return failed(fmt.Errorf("facet: box %gx%gx%g: size must be positive", x, y, z))
	}
	p := func(i, j, l float64) mgl64.Vec3 { return mgl64.Vec3{i * x, j * y, l * z} }
	var tris []triangle
	tris = quad(tris, p(0, 0, 0), p(0, 1, 0), p(1, 1, 0), p(1, 0, 0)) // -Z
	tris = quad(tris, p(0, 0, 1), p(1, 0, 1), p(1, 1, 1), p(0, 1, 1)) // +Z
	tris = quad(tris, p(0, 0, 0), p(1, 0, 0), p(1, 0, 1), p(0, 0, 1)) // -Y
	tris = quad(tris, p(0, 1, 0), p(0, 1, 1), p(1, 1, 1), p(1, 1, 0)) // +Y
	tris = quad(tris, p(0, 0, 0), p(0, 0, 1), p(0, 1, 1), p(0, 1, 0)) // -X
	tris = quad(tris, p(1, 0, 0), p(1, 1, 0), p(1, 1, 1), p(1, 0, 1)) // +X
	return &solid{tris: tris}
}

// Cylinder creates a cylinder centered on the origin along Z, faceted into
// segments sides.
func (k *FacetKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if height <= 0 || radius <= 0 {
		return failed(fmt.Errorf("facet: cylinder h=%g r=%g: size must be positive", height, radius))
	}
	if segments <= 0 {
		segments = DefaultSegments
	}
	segments = max(segments, 3)

	h := height / 2
	ring := make([]mgl64.Vec3, segments)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / float64(segments)
		ring[i] = mgl64.Vec3{radius * math.Cos(a), radius * math.Sin(a), 0}
	}
	top := mgl64.Vec3{0, 0, h}
	bottom := mgl64.Vec3{0, 0, -h}

	tris := make([]triangle, 0, 4*segments)
	for i := range ring {
		a, b := ring[i], ring[(i+1)%segments]
		a0, b0 := a.Add(bottom), b.Add(bottom)
		a1, b1 := a.Add(top), b.Add(top)
		tris = quad(tris, a0, b0, b1, a1)
		tris = append(tris, triangle{top, a1, b1}, triangle{bottom, b0, a0})
	}
	return &solid{tris: tris}
}

// Union concatenates the facets of both solids. Overlapping solids keep
// their interior faces.
func (k *FacetKernel) Union(a, b kernel.Solid) kernel.Solid {
	sa, sb := unwrap(a), unwrap(b)
	if err := errors.Join(sa.err, sb.err); err != nil {
		return failed(err)
	}
	tris := make([]triangle, 0, len(sa.tris)+len(sb.tris))
	tris = append(tris, sa.tris...)
	return &solid{tris: append(tris, sb.tris...)}
}

// Difference is not supported.
func (k *FacetKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return failed(fmt.Errorf("%w: difference", ErrUnsupported))
}

// Intersection is not supported.
func (k *FacetKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return failed(fmt.Errorf("%w: intersection", ErrUnsupported))
}

func (k *FacetKernel) transform(s kernel.Solid, m mgl64.Mat4) kernel.Solid {
	u := unwrap(s)
	if u.err != nil {
		return s
	}
	tris := make([]triangle, len(u.tris))
	for i, t := range u.tris {
		for j, v := range t {
			tris[i][j] = mgl64.TransformCoordinate(v, m)
		}
	}
	return &solid{tris: tris}
}

// Translate moves a solid by (x, y, z).
func (k *FacetKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return k.transform(s, mgl64.Translate3D(x, y, z))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes,
// X first.
func (k *FacetKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := mgl64.HomogRotate3DZ(mgl64.DegToRad(z)).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(y))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(x)))
	return k.transform(s, m)
}

// ToMesh emits one unshared vertex triple per facet with the facet normal.
func (k *FacetKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	u := unwrap(s)
	if u.err != nil {
		return nil, u.err
	}
	n := len(u.tris) * 3
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, n*3),
		Normals:  make([]float32, 0, n*3),
		Indices:  make([]uint32, 0, n),
	}
	for i, t := range u.tris {
		nv := t.normal()
		for j, v := range t {
			m.Vertices = append(m.Vertices, float32(v[0]), float32(v[1]), float32(v[2]))
			m.Normals = append(m.Normals, float32(nv[0]), float32(nv[1]), float32(nv[2]))
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m, nil
}
