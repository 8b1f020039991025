package gl

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSphereSegments is the slice/stack count of the point glyph.
const DefaultSphereSegments = 12

// Sphere is a unit UV sphere stored as a flat triangle list. Positions
// double as normals.
type Sphere struct {
	Triangles []mgl32.Vec3
}

var (
	sphereMu    sync.Mutex
	sphereCache = map[int]*Sphere{}
)

// UnitSphere returns a cached unit sphere with the given number of
// segments around and from pole to pole. Values below 3 are raised to 3.
func UnitSphere(segments int) *Sphere {
	if segments < 3 {
		segments = 3
	}
	sphereMu.Lock()
	defer sphereMu.Unlock()
	if s, ok := sphereCache[segments]; ok {
		return s
	}
	s := buildSphere(segments, segments)
	sphereCache[segments] = s
	return s
}

func buildSphere(slices, stacks int) *Sphere {
	at := func(i, j int) mgl32.Vec3 {
		theta := math32.Pi * float32(j) / float32(stacks)
		phi := 2 * math32.Pi * float32(i) / float32(slices)
		st := math32.Sin(theta)
		return mgl32.Vec3{st * math32.Cos(phi), math32.Cos(theta), st * math32.Sin(phi)}
	}
	s := &Sphere{}
	for j := 0; j < stacks; j++ {
		for i := 0; i < slices; i++ {
			a, b := at(i, j), at(i+1, j)
			c, d := at(i, j+1), at(i+1, j+1)
			if j != 0 {
				s.Triangles = append(s.Triangles, a, c, b)
			}
			if j != stacks-1 {
				s.Triangles = append(s.Triangles, b, c, d)
			}
		}
	}
	return s
}

// TriangleCount returns the number of triangles in the glyph.
func (s *Sphere) TriangleCount() int {
	return len(s.Triangles) / 3
}

// Draw emits the sphere scaled by radius around center as one Triangles
// batch.
func (s *Sphere) Draw(ctx Context, center mgl32.Vec3, radius float32) {
	ctx.Begin(Triangles)
	for _, p := range s.Triangles {
		ctx.Normal(p)
		ctx.Vertex(center.Add(p.Mul(radius)))
	}
	ctx.End()
}
