package tessellate

import (
	"math"
	"slices"

	"github.com/chazu/brepview/pkg/brep"
	"github.com/chazu/brepview/pkg/kernel"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

const (
	// DefaultFeatureAngle is the dihedral angle, in degrees, above which two
	// triangles belong to different faces.
	DefaultFeatureAngle = 30.0

	// DefaultWeldTolerance scales with the mesh diagonal when
	// Options.WeldEpsilon is unset.
	DefaultWeldTolerance = 1e-6
)

// Options control topology recovery.
type Options struct {
	FeatureAngle float64 // degrees; 0 means DefaultFeatureAngle
	WeldEpsilon  float64 // absolute; 0 derives it from the mesh size
}

// Topology is the boundary representation recovered from a triangle soup,
// in the layouts the brep renderers consume.
type Topology struct {
	// Faces holds welded vertices, triangles followed by a separator, and
	// one PartIndex entry per face.
	Faces brep.Mesh
	// Normals are smooth within a face and split across face boundaries.
	// NormalIndex parallels Faces.CoordIndex, separators included.
	Normals     []mgl32.Vec3
	NormalIndex []int32
	// Edges holds one polyline per topological edge, each followed by a
	// separator. Closed edges repeat their first vertex.
	Edges brep.Mesh
	// Points shares the face vertices and appends one vertex per corner
	// from PointStart on.
	Points     brep.Mesh
	PointStart int
}

// FaceCount returns the number of faces.
func (t *Topology) FaceCount() int { return t.Faces.PartCount() }

// EdgeCount returns the number of edges.
func (t *Topology) EdgeCount() int { return brep.SectionCount(t.Edges.CoordIndex) }

// VertexCount returns the number of corner vertices.
func (t *Topology) VertexCount() int { return len(t.Points.Vertices) - t.PointStart }

// State returns the attribute state for drawing the faces in c.
func (t *Topology) State(c brep.State) brep.State {
	c.NormalBinding = brep.PerVertexIndexed
	c.Normals = t.Normals
	c.NormalIndex = t.NormalIndex
	return c
}

type edgeKey struct{ a, b int32 }

func makeEdge(a, b int32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

type extractor struct {
	verts   []mgl32.Vec3
	remap   []int32 // kernel vertex to welded vertex
	tris    [][3]int32
	normals []mgl32.Vec3 // unit normal per triangle
	areas   []float32
	edges   map[edgeKey][]int
	face    []int // face id per triangle
	faces   [][]int
}

// Extract recovers faces, edges and corners from a kernel mesh. Vertices
// closer than the weld tolerance are merged and degenerate triangles are
// dropped. Faces grow across manifold edges whose dihedral angle is below
// the feature angle. Edges are the chains of boundary, non-manifold and
// face-separating mesh edges, split at corners where other than two such
// mesh edges meet.
func Extract(m *kernel.Mesh, opts Options) *Topology {
	x := &extractor{edges: make(map[edgeKey][]int)}
	x.weld(m, weldEpsilon(m, opts))
	x.triangles(m)
	x.growFaces(featureCos(opts))
	return x.topology()
}

func featureCos(opts Options) float32 {
	a := opts.FeatureAngle
	if a <= 0 {
		a = DefaultFeatureAngle
	}
	return float32(math.Cos(a * math.Pi / 180))
}

func weldEpsilon(m *kernel.Mesh, opts Options) float64 {
	if opts.WeldEpsilon > 0 {
		return opts.WeldEpsilon
	}
	min, max, ok := m.Bounds()
	if !ok {
		return DefaultWeldTolerance
	}
	d := mgl32.Vec3(max).Sub(mgl32.Vec3(min)).Len()
	return DefaultWeldTolerance * math.Max(float64(d), 1)
}

// weld merges each vertex into the closest welded vertex within eps of it.
// Welded vertices are bucketed in cells of size eps; a lookup probes the
// vertex's cell and its 26 neighbours, so points on either side of a cell
// boundary still meet.
func (x *extractor) weld(m *kernel.Mesh, eps float64) {
	cells := make(map[[3]int64][]int32)
	x.remap = make([]int32, m.VertexCount())
	for i := range x.remap {
		v := mgl32.Vec3(m.Vertex(i))
		key := [3]int64{
			int64(math.Floor(float64(v[0]) / eps)),
			int64(math.Floor(float64(v[1]) / eps)),
			int64(math.Floor(float64(v[2]) / eps)),
		}
		id, ok := x.nearby(cells, key, v, eps)
		if !ok {
			id = int32(len(x.verts))
			cells[key] = append(cells[key], id)
			x.verts = append(x.verts, v)
		}
		x.remap[i] = id
	}
}

// nearby returns the closest welded vertex within eps of v in the cells
// around key.
func (x *extractor) nearby(cells map[[3]int64][]int32, key [3]int64, v mgl32.Vec3, eps float64) (int32, bool) {
	best, found := eps, int32(-1)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, id := range cells[[3]int64{key[0] + dx, key[1] + dy, key[2] + dz}] {
					if d := float64(x.verts[id].Sub(v).Len()); d <= best {
						best, found = d, id
					}
				}
			}
		}
	}
	return found, found >= 0
}

// triangles remaps the kernel triangles onto welded vertices, drops
// degenerate ones and records edge adjacency.
func (x *extractor) triangles(m *kernel.Mesh) {
	for t := 0; t < m.TriangleCount(); t++ {
		k := m.Triangle(t)
		if int(max(k[0], k[1], k[2])) >= len(x.remap) {
			continue
		}
		tri := [3]int32{x.remap[k[0]], x.remap[k[1]], x.remap[k[2]]}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			continue
		}
		a, b, c := x.verts[tri[0]], x.verts[tri[1]], x.verts[tri[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		l := n.Len()
		if l == 0 {
			continue
		}
		id := len(x.tris)
		x.tris = append(x.tris, tri)
		x.normals = append(x.normals, n.Mul(1/l))
		x.areas = append(x.areas, l/2)
		for j := 0; j < 3; j++ {
			e := makeEdge(tri[j], tri[(j+1)%3])
			x.edges[e] = append(x.edges[e], id)
		}
	}
}

// growFaces assigns every triangle to a face by flood fill across smooth
// manifold edges, seeding faces in triangle order.
func (x *extractor) growFaces(cosLimit float32) {
	x.face = make([]int, len(x.tris))
	for i := range x.face {
		x.face[i] = -1
	}
	for seed := range x.tris {
		if x.face[seed] >= 0 {
			continue
		}
		id := len(x.faces)
		x.face[seed] = id
		queue := []int{seed}
		var members []int
		for len(queue) > 0 {
			t := queue[0]
			queue = queue[1:]
			members = append(members, t)
			tri := x.tris[t]
			for j := 0; j < 3; j++ {
				adj := x.edges[makeEdge(tri[j], tri[(j+1)%3])]
				if len(adj) != 2 {
					continue
				}
				o := adj[0]
				if o == t {
					o = adj[1]
				}
				if x.face[o] >= 0 || x.normals[t].Dot(x.normals[o]) < cosLimit {
					continue
				}
				x.face[o] = id
				queue = append(queue, o)
			}
		}
		slices.Sort(members)
		x.faces = append(x.faces, members)
	}
}

// feature reports whether e separates faces or bounds the surface.
func (x *extractor) feature(adj []int) bool {
	if len(adj) != 2 {
		return true
	}
	return x.face[adj[0]] != x.face[adj[1]]
}

func (x *extractor) topology() *Topology {
	t := &Topology{}
	x.buildFaces(t)
	corners := x.buildEdges(t)

	t.PointStart = len(x.verts)
	t.Points.Vertices = slices.Clone(x.verts)
	for _, c := range corners {
		t.Points.Vertices = append(t.Points.Vertices, x.verts[c])
	}
	return t
}

type faceVertex struct {
	face int
	v    int32
}

// buildFaces writes the face stream and per-face smoothed normals.
func (x *extractor) buildFaces(t *Topology) {
	t.Faces.Vertices = x.verts
	normalOf := make(map[faceVertex]int32)
	var sums []mgl32.Vec3

	for f, members := range x.faces {
		t.Faces.PartIndex = append(t.Faces.PartIndex, int32(len(members)))
		for _, tri := range members {
			for _, v := range x.tris[tri] {
				key := faceVertex{f, v}
				n, ok := normalOf[key]
				if !ok {
					n = int32(len(sums))
					normalOf[key] = n
					sums = append(sums, mgl32.Vec3{})
				}
				sums[n] = sums[n].Add(x.normals[tri].Mul(x.areas[tri]))
				t.Faces.CoordIndex = append(t.Faces.CoordIndex, v)
				t.NormalIndex = append(t.NormalIndex, n)
			}
			t.Faces.CoordIndex = append(t.Faces.CoordIndex, brep.Sentinel)
			t.NormalIndex = append(t.NormalIndex, brep.Sentinel)
		}
	}
	t.Normals = lo.Map(sums, func(n mgl32.Vec3, _ int) mgl32.Vec3 {
		if n.Len() == 0 {
			return n
		}
		return n.Normalize()
	})
}

// buildEdges chains feature mesh edges into polylines and returns the
// corner vertices in ascending order.
func (x *extractor) buildEdges(t *Topology) []int32 {
	links := make(map[int32][]int32)
	for e, adj := range x.edges {
		if x.feature(adj) {
			links[e.a] = append(links[e.a], e.b)
			links[e.b] = append(links[e.b], e.a)
		}
	}
	for _, ns := range links {
		slices.Sort(ns)
	}
	verts := lo.Keys(links)
	slices.Sort(verts)

	used := make(map[edgeKey]bool)
	walk := func(from, to int32) []int32 {
		line := []int32{from}
		prev, cur := from, to
		used[makeEdge(prev, cur)] = true
		for {
			line = append(line, cur)
			if len(links[cur]) != 2 || cur == from {
				return line
			}
			next := links[cur][0]
			if next == prev {
				next = links[cur][1]
			}
			if used[makeEdge(cur, next)] {
				return line
			}
			used[makeEdge(cur, next)] = true
			prev, cur = cur, next
		}
	}

	var corners []int32
	var lines [][]int32
	for _, v := range verts {
		if len(links[v]) == 2 {
			continue
		}
		corners = append(corners, v)
		for _, n := range links[v] {
			if !used[makeEdge(v, n)] {
				lines = append(lines, walk(v, n))
			}
		}
	}
	// Remaining feature edges form closed loops without corners. Each loop
	// gets its lowest vertex as a corner so every edge has an end point.
	for _, v := range verts {
		for _, n := range links[v] {
			if !used[makeEdge(v, n)] {
				lines = append(lines, walk(v, n))
				corners = append(corners, v)
			}
		}
	}
	slices.Sort(corners)

	for _, l := range lines {
		t.Edges.CoordIndex = append(t.Edges.CoordIndex, l...)
		t.Edges.CoordIndex = append(t.Edges.CoordIndex, brep.Sentinel)
	}
	t.Edges.Vertices = x.verts
	return corners
}
