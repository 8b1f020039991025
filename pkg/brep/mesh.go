package brep

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Sentinel separates polylines in an edge stream and may follow each
// triangle in a face stream.
const Sentinel int32 = -1

// Mesh is the passive shape data shared by all passes.
// For face sets, CoordIndex holds triangles (three indices, optionally
// followed by a Sentinel) and PartIndex holds the triangle count of each
// part. Edge sets use CoordIndex as Sentinel-separated polylines and ignore
// PartIndex. Point sets only use Vertices.
type Mesh struct {
	Vertices   []mgl32.Vec3
	CoordIndex []int32
	PartIndex  []int32

	ranges []PartRange
}

// PartRange locates one part inside CoordIndex.
type PartRange struct {
	Start         int // first CoordIndex slot of the part
	End           int // one past the last slot, separators included
	FirstTriangle int // ordinal of the part's first triangle
	Triangles     int
}

// triangle is one decoded triangle of a face stream.
type triangle struct {
	v    [3]int32
	at   int  // CoordIndex offset of v[0]
	next int  // offset of the following triangle
	sep  bool // a separator slot was consumed
}

// nextTriangle decodes the triangle starting at idx[i]. ok is false when
// fewer than three indices remain. A negative value directly after the
// triangle is consumed as its separator.
func nextTriangle(idx []int32, i int) (tri triangle, ok bool) {
	if i+2 >= len(idx) {
		return tri, false
	}
	tri.v = [3]int32{idx[i], idx[i+1], idx[i+2]}
	tri.at = i
	tri.next = i + 3
	if tri.next < len(idx) && idx[tri.next] < 0 {
		tri.next++
		tri.sep = true
	}
	return tri, true
}

// valid reports whether every vertex of t addresses one of n vertices.
func (t triangle) valid(n int) bool {
	for _, v := range t.v {
		if v < 0 || int(v) >= n {
			return false
		}
	}
	return true
}

// TriangleCount returns the number of triangles CoordIndex decodes to,
// stopping at the first malformed triangle like the renderer does.
func (m *Mesh) TriangleCount() int {
	n := 0
	for i := 0; ; n++ {
		tri, ok := nextTriangle(m.CoordIndex, i)
		if !ok || !tri.valid(len(m.Vertices)) {
			return n
		}
		i = tri.next
	}
}

// PartCount returns the number of entries in the part table.
func (m *Mesh) PartCount() int {
	return len(m.PartIndex)
}

// Invalidate drops cached part ranges. Call it after mutating the arrays
// in place; replacing the Mesh value does not need it.
func (m *Mesh) Invalidate() {
	m.ranges = nil
}

// PartRanges returns the location of each part in CoordIndex. The result
// is cached until Invalidate. Parts that run past the end of the stream are
// clipped to it.
func (m *Mesh) PartRanges() []PartRange {
	if m.ranges != nil || len(m.PartIndex) == 0 {
		return m.ranges
	}
	ranges := make([]PartRange, len(m.PartIndex))
	i, tri := 0, 0
	for p, n := range m.PartIndex {
		r := PartRange{Start: i, FirstTriangle: tri}
		for k := int32(0); k < n; k++ {
			t, ok := nextTriangle(m.CoordIndex, i)
			if !ok {
				break
			}
			i = t.next
			tri++
			r.Triangles++
		}
		r.End = i
		ranges[p] = r
	}
	m.ranges = ranges
	return ranges
}

// Validate checks the invariants the renderer relies on: every non-negative
// index addresses a vertex, triangles are well formed and the part table
// accounts for every triangle. Rendering never requires a prior Validate;
// malformed data just truncates the draw.
func (m *Mesh) Validate() error {
	var errs []error
	for i, v := range m.CoordIndex {
		if int(v) >= len(m.Vertices) || v < Sentinel {
			errs = append(errs, fmt.Errorf("brep: coordIndex[%d] = %d out of range [0,%d)", i, v, len(m.Vertices)))
		}
	}
	if len(m.PartIndex) > 0 {
		sum := 0
		for i, n := range m.PartIndex {
			if n < 0 {
				errs = append(errs, fmt.Errorf("brep: partIndex[%d] = %d is negative", i, n))
				continue
			}
			sum += int(n)
		}
		if tris := m.TriangleCount(); sum != tris {
			errs = append(errs, fmt.Errorf("brep: part table covers %d triangles, coordIndex has %d", sum, tris))
		}
	}
	return errors.Join(errs...)
}

// Bounds returns the axis-aligned bounds of the vertices. ok is false for
// an empty mesh.
func (m *Mesh) Bounds() (min, max mgl32.Vec3, ok bool) {
	if len(m.Vertices) == 0 {
		return min, max, false
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			if v[k] < min[k] {
				min[k] = v[k]
			}
			if v[k] > max[k] {
				max[k] = v[k]
			}
		}
	}
	return min, max, true
}
