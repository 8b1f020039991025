package brep

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Kind is the primitive kind a shape is made of.
type Kind int

const (
	KindFace  Kind = iota // triangles grouped into faces
	KindLine              // line segments grouped into polylines
	KindPoint             // individual vertices
)

func (k Kind) String() string {
	switch k {
	case KindFace:
		return "face"
	case KindLine:
		return "edge"
	case KindPoint:
		return "vertex"
	default:
		return "unknown"
	}
}

// ParseKind maps "face", "edge" or "vertex" to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k := KindFace; k <= KindPoint; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Primitive identifies a low-level pick: the ordinal of a triangle, a line
// segment or a point within its shape.
type Primitive struct {
	Kind  Kind
	Index int
}

// Detail is a resolved pick.
type Detail struct {
	Kind       Kind
	Index      int     // primitive ordinal
	PartIndex  int     // face, polyline or point the primitive belongs to
	CoordIndex int     // first vertex of the primitive
	Distance   float32 // ray parameter of the hit, when produced by Pick
}

// Primitive returns the low-level primitive the detail was resolved from.
func (d Detail) Primitive() Primitive {
	return Primitive{Kind: d.Kind, Index: d.Index}
}

// ResolveFacePart returns the part owning triangle t: the unique i with
// sum(parts[:i]) <= t < sum(parts[:i+1]).
func ResolveFacePart(parts []int32, t int) (int, bool) {
	if t < 0 {
		return 0, false
	}
	count := 0
	for i, n := range parts {
		count += int(n)
		if t < count {
			return i, true
		}
	}
	return 0, false
}

// ResolveEdgePart returns the polyline owning line segment s, counting
// Sentinel-delimited sections of coordIndex, and the first vertex of the
// segment. Sections are numbered by the sentinels preceding them, so empty
// sections still take a number.
func ResolveEdgePart(coordIndex []int32, s int) (part int, coord int, ok bool) {
	if s < 0 {
		return 0, 0, false
	}
	seg := 0
	section := 0
	for i := 0; i < len(coordIndex); i++ {
		v := coordIndex[i]
		if v < 0 {
			section++
			continue
		}
		if i+1 < len(coordIndex) && coordIndex[i+1] >= 0 {
			if seg == s {
				return section, int(v), true
			}
			seg++
		}
	}
	return 0, 0, false
}

// SectionCount returns the number of Sentinel-delimited sections of an edge
// stream, counting a trailing unterminated run.
func SectionCount(coordIndex []int32) int {
	n := 0
	open := false
	for _, v := range coordIndex {
		if v < 0 {
			n++
			open = false
			continue
		}
		open = true
	}
	if open {
		n++
	}
	return n
}

// intersectTriangle returns the ray parameter of the hit between the ray
// and triangle (a, b, c), using the Moller-Trumbore test. Both faces hit.
func intersectTriangle(orig, dir, a, b, c mgl32.Vec3) (float32, bool) {
	const eps = 1e-7
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	s := orig.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t <= eps {
		return 0, false
	}
	return t, true
}

// raySegment returns the closest distance between the ray and segment
// [a, b], and the ray parameter at the closest approach.
func raySegment(orig, dir, a, b mgl32.Vec3) (dist, t float32) {
	u := b.Sub(a)
	w := orig.Sub(a)
	aa := dir.Dot(dir)
	bb := dir.Dot(u)
	cc := u.Dot(u)
	dd := dir.Dot(w)
	ee := u.Dot(w)
	den := aa*cc - bb*bb

	var sc, tc float32 // ray and segment parameters
	if den < 1e-9 {
		sc = 0
		tc = clamp(ee/maxf(cc, 1e-9), 0, 1)
	} else {
		tc = clamp((aa*ee-bb*dd)/den, 0, 1)
		sc = (bb*tc - dd) / aa
	}
	if sc < 0 {
		sc = 0
		tc = clamp(ee/maxf(cc, 1e-9), 0, 1)
	}
	p := orig.Add(dir.Mul(sc))
	q := a.Add(u.Mul(tc))
	return p.Sub(q).Len(), sc
}

// rayPoint returns the distance from p to the ray and the ray parameter of
// the closest approach.
func rayPoint(orig, dir, p mgl32.Vec3) (dist, t float32) {
	t = p.Sub(orig).Dot(dir) / dir.Dot(dir)
	if t < 0 {
		t = 0
	}
	return orig.Add(dir.Mul(t)).Sub(p).Len(), t
}

func clamp(f, lo, hi float32) float32 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
