package gl

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Op identifies a recorded command.
type Op int

const (
	OpBegin Op = iota
	OpEnd
	OpColor
	OpNormal
	OpTexCoord
	OpVertex
	OpLightModel
	OpLineWidth
)

func (o Op) String() string {
	switch o {
	case OpBegin:
		return "begin"
	case OpEnd:
		return "end"
	case OpColor:
		return "color"
	case OpNormal:
		return "normal"
	case OpTexCoord:
		return "texcoord"
	case OpVertex:
		return "vertex"
	case OpLightModel:
		return "light-model"
	case OpLineWidth:
		return "line-width"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Command is one recorded call. Only the field matching Op is meaningful.
type Command struct {
	Op        Op
	Primitive Primitive
	Color     Color
	Vec       mgl32.Vec3
	UV        mgl32.Vec2
	Light     LightModel
	Width     float32
}

// Stats summarizes what a command stream drew.
type Stats struct {
	Batches   int
	Points    int
	Lines     int
	Triangles int
	Colors    int
	Normals   int
	TexCoords int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d batches: %d points, %d lines, %d tris (%d colors, %d normals, %d texcoords)",
		s.Batches, s.Points, s.Lines, s.Triangles, s.Colors, s.Normals, s.TexCoords)
}

// Merge adds the counts of o to s.
func (s *Stats) Merge(o Stats) {
	s.Batches += o.Batches
	s.Points += o.Points
	s.Lines += o.Lines
	s.Triangles += o.Triangles
	s.Colors += o.Colors
	s.Normals += o.Normals
	s.TexCoords += o.TexCoords
}

// Recorder is a Context that stores every command it receives. The stream
// can be inspected directly, summarized with Stats, or replayed into another
// Context.
type Recorder struct {
	Commands []Command

	open    bool
	prim    Primitive
	pending int // vertices in the current batch
	stats   Stats
}

var _ Context = (*Recorder)(nil)

// Reset empties the recorder so it can be reused.
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
	r.open = false
	r.pending = 0
	r.stats = Stats{}
}

func (r *Recorder) Begin(p Primitive) {
	r.Commands = append(r.Commands, Command{Op: OpBegin, Primitive: p})
	r.open = true
	r.prim = p
	r.pending = 0
	r.stats.Batches++
}

func (r *Recorder) End() {
	if r.open && r.prim == LineStrip && r.pending > 1 {
		r.stats.Lines += r.pending - 1
	}
	r.Commands = append(r.Commands, Command{Op: OpEnd, Primitive: r.prim})
	r.open = false
	r.pending = 0
}

func (r *Recorder) Color(c Color) {
	r.Commands = append(r.Commands, Command{Op: OpColor, Color: c})
	r.stats.Colors++
}

func (r *Recorder) Normal(n mgl32.Vec3) {
	r.Commands = append(r.Commands, Command{Op: OpNormal, Vec: n})
	r.stats.Normals++
}

func (r *Recorder) TexCoord(t mgl32.Vec2) {
	r.Commands = append(r.Commands, Command{Op: OpTexCoord, UV: t})
	r.stats.TexCoords++
}

func (r *Recorder) Vertex(v mgl32.Vec3) {
	r.Commands = append(r.Commands, Command{Op: OpVertex, Vec: v})
	r.pending++
	switch r.prim {
	case Points:
		r.stats.Points++
	case Lines:
		if r.pending%2 == 0 {
			r.stats.Lines++
		}
	case Triangles:
		if r.pending%3 == 0 {
			r.stats.Triangles++
		}
	}
}

func (r *Recorder) SetLightModel(m LightModel) {
	r.Commands = append(r.Commands, Command{Op: OpLightModel, Light: m})
}

func (r *Recorder) SetLineWidth(w float32) {
	r.Commands = append(r.Commands, Command{Op: OpLineWidth, Width: w})
}

// Stats returns the counts accumulated since the last Reset.
func (r *Recorder) Stats() Stats {
	return r.stats
}

// Count returns the number of recorded commands with the given op.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Vertices returns the positions of all recorded vertices in order.
func (r *Recorder) Vertices() []mgl32.Vec3 {
	var vs []mgl32.Vec3
	for _, c := range r.Commands {
		if c.Op == OpVertex {
			vs = append(vs, c.Vec)
		}
	}
	return vs
}

// Replay sends the recorded stream to dst.
func (r *Recorder) Replay(dst Context) {
	for _, c := range r.Commands {
		switch c.Op {
		case OpBegin:
			dst.Begin(c.Primitive)
		case OpEnd:
			dst.End()
		case OpColor:
			dst.Color(c.Color)
		case OpNormal:
			dst.Normal(c.Vec)
		case OpTexCoord:
			dst.TexCoord(c.UV)
		case OpVertex:
			dst.Vertex(c.Vec)
		case OpLightModel:
			dst.SetLightModel(c.Light)
		case OpLineWidth:
			dst.SetLineWidth(c.Width)
		}
	}
}
