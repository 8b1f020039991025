// Package gl defines the immediate-mode drawing surface the shape nodes
// render into. A Context receives one primitive at a time together with the
// material, normal and texture coordinate state current for each vertex,
// which keeps the shape renderers independent of any particular graphics API.
//
// Two implementations are provided: Recorder, which captures the command
// stream for inspection and statistics, and Raster, which projects the
// stream through a Camera and fills an image.RGBA.
package gl

import "github.com/go-gl/mathgl/mgl32"

// Primitive is the kind of geometry started by Context.Begin.
type Primitive int

const (
	Points    Primitive = iota // one point per vertex
	Lines                      // independent segments, two vertices each
	LineStrip                  // connected segments
	Triangles                  // independent triangles, three vertices each
)

func (p Primitive) String() string {
	switch p {
	case Points:
		return "points"
	case Lines:
		return "lines"
	case LineStrip:
		return "line-strip"
	case Triangles:
		return "triangles"
	default:
		return "unknown"
	}
}

// LightModel selects how colors are shaded.
type LightModel int

const (
	Phong     LightModel = iota // shaded by the current normal
	BaseColor                   // flat, unlit color
)

// Context receives draw commands. Calls between Begin and End describe a
// single primitive batch; Color, Normal and TexCoord set state that applies
// to every following Vertex until changed.
type Context interface {
	Begin(p Primitive)
	End()

	Color(c Color)
	Normal(n mgl32.Vec3)
	TexCoord(t mgl32.Vec2)
	Vertex(v mgl32.Vec3)

	SetLightModel(m LightModel)
	SetLineWidth(w float32)
}
