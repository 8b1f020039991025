package brep

import (
	"github.com/chazu/brepview/pkg/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultPointSize is the glyph radius in pixels used when the render
// context does not set one.
const DefaultPointSize = 4

// PointSet renders vertices as sphere glyphs of constant screen size. Each
// vertex from StartIndex on is one part, identified by its coordinate
// index.
type PointSet struct {
	overlay
	mesh Mesh

	// StartIndex is the first vertex drawn. Negative values count as 0.
	StartIndex int
}

// NewPointSet returns a point set over the vertices of m from start on.
func NewPointSet(m Mesh, start int) *PointSet {
	return &PointSet{overlay: newOverlay(), mesh: m, StartIndex: max(start, 0)}
}

// First returns the coordinate index of the first drawn vertex.
func (p *PointSet) First() int {
	return max(p.StartIndex, 0)
}

// Kind returns KindPoint.
func (p *PointSet) Kind() Kind { return KindPoint }

// Mesh returns the node's mesh.
func (p *PointSet) Mesh() *Mesh { return &p.mesh }

// SetMesh replaces the geometry.
func (p *PointSet) SetMesh(m Mesh) { p.mesh = m }

// SelectionState summarizes the selection against the drawn vertices.
func (p *PointSet) SelectionState() SelectionState {
	return p.state(p.First(), len(p.mesh.Vertices))
}

// HandleEvent applies a highlight or selection event. Only point primitives
// are accepted.
func (p *PointSet) HandleEvent(ev Event) bool {
	return p.apply(ev, KindPoint, p.First(), len(p.mesh.Vertices), p.ResolvePick)
}

// ResolvePick maps a point ordinal to its coordinate index.
func (p *PointSet) ResolvePick(pr Primitive) (Detail, bool) {
	if pr.Kind != KindPoint || pr.Index < 0 {
		return Detail{}, false
	}
	coord := p.First() + pr.Index
	if coord >= len(p.mesh.Vertices) {
		return Detail{}, false
	}
	return Detail{Kind: KindPoint, Index: pr.Index, PartIndex: coord, CoordIndex: coord}, true
}

// Pick returns the nearest point within tolerance of the ray.
func (p *PointSet) Pick(origin, dir mgl32.Vec3, tolerance float32) (Detail, bool) {
	best, hit := float32(0), -1
	for i := p.First(); i < len(p.mesh.Vertices); i++ {
		if d, t := rayPoint(origin, dir, p.mesh.Vertices[i]); d <= tolerance && (hit < 0 || t < best) {
			best, hit = t, i
		}
	}
	if hit < 0 {
		return Detail{}, false
	}
	d, ok := p.ResolvePick(Primitive{Kind: KindPoint, Index: hit - p.First()})
	d.Distance = best
	return d, ok
}

// Render draws every vertex from StartIndex on. Vertices that are selected
// or highlighted are left to their overlay pass.
func (p *PointSet) Render(rc *RenderContext) {
	if p.First() >= len(p.mesh.Vertices) {
		return
	}
	passes(rc, &p.overlay, func() { p.renderBase(rc) }, func() { p.renderSelection(rc) }, func() { p.renderHighlight(rc) })
}

func (p *PointSet) renderBase(rc *RenderContext) {
	mbind, _ := ResolveBindings(rc.State)
	sendOverall(rc.GL, mbind, rc.State.Materials)

	skip := make(map[int32]struct{}, p.sel.Len()+1)
	for _, id := range p.sel.indices {
		skip[id] = struct{}{}
	}
	if p.hl.Active() {
		skip[p.hl.Index] = struct{}{}
	}
	for i := p.First(); i < len(p.mesh.Vertices); i++ {
		if _, ok := skip[int32(i)]; ok {
			continue
		}
		p.glyph(rc, p.mesh.Vertices[i])
	}
}

func (p *PointSet) renderSelection(rc *RenderContext) {
	beginOverlay(rc.GL, p.sel.Color)
	for _, id := range p.sel.indices {
		if !p.drawable(id, "selection") {
			continue
		}
		p.glyph(rc, p.mesh.Vertices[id])
	}
	endOverlay(rc.GL)
}

func (p *PointSet) renderHighlight(rc *RenderContext) {
	if !p.drawable(p.hl.Index, "highlight") {
		return
	}
	beginOverlay(rc.GL, p.hl.Color)
	p.glyph(rc, p.mesh.Vertices[p.hl.Index])
	endOverlay(rc.GL)
}

func (p *PointSet) drawable(id int32, what string) bool {
	if int(id) < p.First() || int(id) >= len(p.mesh.Vertices) {
		warnRange("point set", what, id, len(p.mesh.Vertices))
		return false
	}
	return true
}

// glyph draws one point. With a camera the glyph is a sphere whose radius
// keeps PointSize pixels on screen; without one it falls back to a plain
// point.
func (p *PointSet) glyph(rc *RenderContext, v mgl32.Vec3) {
	if rc.Camera == nil {
		rc.GL.Begin(gl.Points)
		rc.GL.Vertex(v)
		rc.GL.End()
		return
	}
	rc.sphere().Draw(rc.GL, v, GlyphRadius(rc.Camera, v, rc.PointSize))
}

// GlyphRadius returns the world-space radius that makes a glyph at v span
// size pixels.
func GlyphRadius(cam *gl.Camera, v mgl32.Vec3, size float32) float32 {
	if size <= 0 {
		size = DefaultPointSize
	}
	return size * cam.PixelSize(v)
}
