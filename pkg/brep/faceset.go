package brep

import (
	"github.com/chazu/brepview/pkg/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// FaceSet renders a triangle mesh partitioned into faces.
type FaceSet struct {
	overlay
	mesh Mesh
}

// NewFaceSet returns a face set over m.
func NewFaceSet(m Mesh) *FaceSet {
	return &FaceSet{overlay: newOverlay(), mesh: m}
}

// Kind returns KindFace.
func (f *FaceSet) Kind() Kind { return KindFace }

// Mesh returns the node's mesh.
func (f *FaceSet) Mesh() *Mesh { return &f.mesh }

// SetMesh replaces the geometry. Selection and highlight are kept; indices
// that no longer address a part are skipped when drawing.
func (f *FaceSet) SetMesh(m Mesh) {
	m.Invalidate()
	f.mesh = m
}

// SelectionState summarizes the selection against the part table.
func (f *FaceSet) SelectionState() SelectionState {
	return f.state(0, f.mesh.PartCount())
}

// HandleEvent applies a highlight or selection event. Only face primitives
// are accepted.
func (f *FaceSet) HandleEvent(ev Event) bool {
	return f.apply(ev, KindFace, 0, f.mesh.PartCount(), f.ResolvePick)
}

// ResolvePick maps a triangle ordinal to its face.
func (f *FaceSet) ResolvePick(p Primitive) (Detail, bool) {
	if p.Kind != KindFace || p.Index < 0 {
		return Detail{}, false
	}
	at, ok := f.triangleOffset(p.Index)
	if !ok {
		return Detail{}, false
	}
	part, ok := ResolveFacePart(f.mesh.PartIndex, p.Index)
	if !ok {
		return Detail{}, false
	}
	return Detail{Kind: KindFace, Index: p.Index, PartIndex: part, CoordIndex: int(f.mesh.CoordIndex[at])}, true
}

// triangleOffset returns the CoordIndex offset of triangle t.
func (f *FaceSet) triangleOffset(t int) (int, bool) {
	i := 0
	for n := 0; ; n++ {
		tri, ok := nextTriangle(f.mesh.CoordIndex, i)
		if !ok || !tri.valid(len(f.mesh.Vertices)) {
			return 0, false
		}
		if n == t {
			return tri.at, true
		}
		i = tri.next
	}
}

// Pick returns the nearest triangle hit by the ray.
func (f *FaceSet) Pick(origin, dir mgl32.Vec3, _ float32) (Detail, bool) {
	best, hit := float32(0), -1
	vs := f.mesh.Vertices
	i := 0
	for n := 0; ; n++ {
		tri, ok := nextTriangle(f.mesh.CoordIndex, i)
		if !ok || !tri.valid(len(vs)) {
			break
		}
		if t, ok := intersectTriangle(origin, dir, vs[tri.v[0]], vs[tri.v[1]], vs[tri.v[2]]); ok {
			if hit < 0 || t < best {
				best, hit = t, n
			}
		}
		i = tri.next
	}
	if hit < 0 {
		return Detail{}, false
	}
	d, ok := f.ResolvePick(Primitive{Kind: KindFace, Index: hit})
	d.Distance = best
	return d, ok
}

// Render draws the faces. Meshes with fewer than three indices draw
// nothing.
func (f *FaceSet) Render(rc *RenderContext) {
	if len(f.mesh.CoordIndex) < 3 {
		return
	}
	passes(rc, &f.overlay, func() { f.renderBase(rc) }, func() { f.renderSelection(rc) }, func() { f.renderHighlight(rc) })
}

func (f *FaceSet) renderBase(rc *RenderContext) {
	mbind, nbind := ResolveBindings(rc.State)
	st := rc.State
	sendOverall(rc.GL, mbind, st.Materials)

	in := triangleInput{
		coords:    f.mesh.Vertices,
		indices:   f.mesh.CoordIndex,
		parts:     f.mesh.PartIndex,
		materials: st.Materials,
		normals:   st.Normals,
		texCoords: st.TexCoords,
		texturing: st.Texturing,
	}
	in.cur.material = newCursor(mbind, indexOr(mbind, st.MaterialIndex, f.mesh.CoordIndex))
	in.cur.normal = newCursor(nbind, indexOr(nbind, st.NormalIndex, f.mesh.CoordIndex))
	if st.Texturing {
		in.cur.texCoord = newCursor(PerVertexIndexed, indexOr(PerVertexIndexed, st.TexCoordIndex, f.mesh.CoordIndex))
	}
	renderTriangles(rc.GL, &in)
}

func (f *FaceSet) renderHighlight(rc *RenderContext) {
	id := f.hl.Index
	if int(id) >= f.mesh.PartCount() {
		warnRange("face set", "highlight", id, f.mesh.PartCount())
		return
	}
	beginOverlay(rc.GL, f.hl.Color)
	f.renderPart(rc, int(id))
	endOverlay(rc.GL)
}

func (f *FaceSet) renderSelection(rc *RenderContext) {
	beginOverlay(rc.GL, f.sel.Color)
	for _, id := range f.sel.indices {
		if id < 0 || int(id) >= f.mesh.PartCount() {
			warnRange("face set", "selection", id, f.mesh.PartCount())
			continue
		}
		f.renderPart(rc, int(id))
	}
	endOverlay(rc.GL)
}

// renderPart decodes the sub-range of one part with overall material, no
// textures and the normal cursor seeked to the part.
func (f *FaceSet) renderPart(rc *RenderContext, p int) {
	r := f.mesh.PartRanges()[p]
	_, nbind := ResolveBindings(rc.State)
	st := rc.State

	in := triangleInput{
		coords:  f.mesh.Vertices,
		indices: f.mesh.CoordIndex[r.Start:r.End],
		parts:   f.mesh.PartIndex[p : p+1],
		normals: st.Normals,
	}
	in.cur.material = newCursor(Overall, nil)
	in.cur.normal = newCursor(nbind, indexOr(nbind, st.NormalIndex, f.mesh.CoordIndex))
	in.cur.normal.seek(p, r)
	renderTriangles(rc.GL, &in)
}

// indexOr returns index, or fallback when a vertex-indexed binding has no
// index stream of its own.
func indexOr(b Binding, index, fallback []int32) []int32 {
	if len(index) == 0 && b == PerVertexIndexed {
		return fallback
	}
	return index
}

// triangleInput is one decoder pass over a face stream range.
type triangleInput struct {
	coords  []mgl32.Vec3
	indices []int32
	parts   []int32

	materials []gl.Color
	normals   []mgl32.Vec3
	texCoords []mgl32.Vec2
	texturing bool

	cur cursors
}

// renderTriangles streams triangles from in.indices into ctx, emitting
// material, normal and texture coordinate state as the cursors dictate.
// Decoding stops at the first triangle with an index outside the vertex
// array.
func renderTriangles(ctx gl.Context, in *triangleInput) {
	c := &in.cur
	c.nextPart(in.parts)

	ctx.Begin(gl.Triangles)
	for i := 0; ; {
		tri, ok := nextTriangle(in.indices, i)
		if !ok || !tri.valid(len(in.coords)) {
			break
		}
		i = tri.next

		first := c.emitted == 0
		for k, v := range tri.v {
			if m, ok := c.material.next(k, first); ok && m >= 0 && m < len(in.materials) {
				ctx.Color(in.materials[m])
			}
			if in.normals != nil {
				if n, ok := c.normal.next(k, first); ok && n >= 0 && n < len(in.normals) {
					ctx.Normal(in.normals[n])
				}
			}
			if in.texturing {
				if t, ok := c.texCoord.next(k, first); ok && t >= 0 && t < len(in.texCoords) {
					ctx.TexCoord(in.texCoords[t])
				}
			}
			ctx.Vertex(in.coords[v])
		}
		if tri.sep {
			c.material.skipSeparator()
			c.normal.skipSeparator()
			c.texCoord.skipSeparator()
		}

		c.emitted++
		if c.emitted == c.pending {
			c.nextPart(in.parts)
		}
	}
	ctx.End()
}
