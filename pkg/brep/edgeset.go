package brep

import (
	"slices"

	"github.com/chazu/brepview/pkg/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// EdgeSet renders Sentinel-separated polylines. Each polyline is one part.
type EdgeSet struct {
	overlay
	mesh Mesh

	// selRuns and hlRuns are the CoordIndex runs of the selected and
	// highlighted polylines, joined by Sentinel. They are rebuilt after every
	// change to the selection, the highlight or the mesh; Render only reads
	// them.
	selRuns []int32
	hlRuns  []int32
}

// NewEdgeSet returns an edge set over m.
func NewEdgeSet(m Mesh) *EdgeSet {
	return &EdgeSet{overlay: newOverlay(), mesh: m}
}

// Kind returns KindLine.
func (e *EdgeSet) Kind() Kind { return KindLine }

// Mesh returns the node's mesh.
func (e *EdgeSet) Mesh() *Mesh { return &e.mesh }

// SetMesh replaces the geometry and rebuilds the overlay index arrays.
func (e *EdgeSet) SetMesh(m Mesh) {
	e.mesh = m
	e.rebuild()
}

// SelectionIndex returns a copy of the derived index array of the selected
// polylines.
func (e *EdgeSet) SelectionIndex() []int32 { return slices.Clone(e.selRuns) }

// HighlightIndex returns a copy of the derived index array of the
// highlighted polyline.
func (e *EdgeSet) HighlightIndex() []int32 { return slices.Clone(e.hlRuns) }

// SelectionState summarizes the selection against the polylines.
func (e *EdgeSet) SelectionState() SelectionState {
	return e.state(0, SectionCount(e.mesh.CoordIndex))
}

// HandleEvent applies a highlight or selection event. Only line primitives
// are accepted.
func (e *EdgeSet) HandleEvent(ev Event) bool {
	changed := e.apply(ev, KindLine, 0, SectionCount(e.mesh.CoordIndex), e.ResolvePick)
	e.rebuild()
	return changed
}

func (e *EdgeSet) rebuild() {
	e.selRuns = extractSections(e.mesh.CoordIndex, e.sel.indices)
	e.hlRuns = nil
	if e.hl.Active() {
		e.hlRuns = extractSections(e.mesh.CoordIndex, []int32{e.hl.Index})
	}
}

// extractSections copies the runs of coordIndex whose section ordinal is in
// ids, in ids order, joined by Sentinel.
func extractSections(coordIndex []int32, ids []int32) []int32 {
	if len(ids) == 0 {
		return nil
	}
	var runs [][2]int // [start, end) of every section
	start := 0
	for i, v := range coordIndex {
		if v < 0 {
			runs = append(runs, [2]int{start, i})
			start = i + 1
		}
	}
	if start < len(coordIndex) {
		runs = append(runs, [2]int{start, len(coordIndex)})
	}

	var out []int32
	for _, id := range ids {
		if id < 0 || int(id) >= len(runs) {
			continue
		}
		r := runs[id]
		if len(out) > 0 {
			out = append(out, Sentinel)
		}
		out = append(out, coordIndex[r[0]:r[1]]...)
	}
	return out
}

// ResolvePick maps a line segment ordinal to its polyline.
func (e *EdgeSet) ResolvePick(p Primitive) (Detail, bool) {
	if p.Kind != KindLine {
		return Detail{}, false
	}
	part, coord, ok := ResolveEdgePart(e.mesh.CoordIndex, p.Index)
	if !ok {
		return Detail{}, false
	}
	return Detail{Kind: KindLine, Index: p.Index, PartIndex: part, CoordIndex: coord}, true
}

// Pick returns the nearest segment within tolerance of the ray.
func (e *EdgeSet) Pick(origin, dir mgl32.Vec3, tolerance float32) (Detail, bool) {
	idx := e.mesh.CoordIndex
	vs := e.mesh.Vertices
	best, hit := float32(0), -1
	seg := 0
	for i := 0; i+1 < len(idx); i++ {
		a, b := idx[i], idx[i+1]
		if a < 0 || b < 0 {
			continue
		}
		if int(a) < len(vs) && int(b) < len(vs) {
			if d, t := raySegment(origin, dir, vs[a], vs[b]); d <= tolerance && (hit < 0 || t < best) {
				best, hit = t, seg
			}
		}
		seg++
	}
	if hit < 0 {
		return Detail{}, false
	}
	d, ok := e.ResolvePick(Primitive{Kind: KindLine, Index: hit})
	d.Distance = best
	return d, ok
}

// Render draws the polylines in the base material and the derived
// selection and highlight runs in their overlay colors.
func (e *EdgeSet) Render(rc *RenderContext) {
	if len(e.mesh.CoordIndex) < 2 {
		return
	}
	if rc.LineWidth > 0 {
		rc.GL.SetLineWidth(rc.LineWidth)
	}
	passes(rc, &e.overlay,
		func() {
			mbind, _ := ResolveBindings(rc.State)
			sendOverall(rc.GL, mbind, rc.State.Materials)
			e.renderRuns(rc.GL, e.mesh.CoordIndex)
		},
		func() { e.renderOverlay(rc.GL, e.sel.Color, e.selRuns) },
		func() { e.renderOverlay(rc.GL, e.hl.Color, e.hlRuns) },
	)
}

func (e *EdgeSet) renderOverlay(ctx gl.Context, c gl.Color, idx []int32) {
	if len(idx) == 0 {
		return
	}
	beginOverlay(ctx, c)
	e.renderRuns(ctx, idx)
	endOverlay(ctx)
}

// renderRuns emits one line strip per Sentinel-delimited run. A vertex
// index outside the vertex array ends the strip and the rest of its run is
// skipped. Runs with fewer than two vertices draw nothing.
func (e *EdgeSet) renderRuns(ctx gl.Context, idx []int32) {
	vs := e.mesh.Vertices
	for i := 0; i < len(idx); {
		j := i
		for j < len(idx) && idx[j] >= 0 && int(idx[j]) < len(vs) {
			j++
		}
		if j-i >= 2 {
			ctx.Begin(gl.LineStrip)
			for _, v := range idx[i:j] {
				ctx.Vertex(vs[v])
			}
			ctx.End()
		}
		if j < len(idx) && idx[j] >= 0 {
			warnRange("edge set", "coordinate", idx[j], len(vs))
		}
		for j < len(idx) && idx[j] >= 0 {
			j++
		}
		i = j + 1
	}
}
