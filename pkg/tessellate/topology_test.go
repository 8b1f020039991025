package tessellate

import (
	"testing"

	"github.com/chazu/brepview/pkg/brep"
	"github.com/chazu/brepview/pkg/kernel"
	"github.com/chazu/brepview/pkg/kernel/facet"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeMesh(t *testing.T) *kernel.Mesh {
	t.Helper()
	k := facet.New()
	m, err := k.ToMesh(k.Box(1, 1, 1))
	require.NoError(t, err)
	return m
}

func TestExtractCube(t *testing.T) {
	topo := Extract(cubeMesh(t), Options{})

	assert.Len(t, topo.Faces.Vertices, 8, "soup vertices are welded")
	assert.Equal(t, []int32{2, 2, 2, 2, 2, 2}, topo.Faces.PartIndex)
	assert.Len(t, topo.Faces.CoordIndex, 12*4)
	require.NoError(t, topo.Faces.Validate())
	assert.Equal(t, len(topo.Faces.CoordIndex), len(topo.NormalIndex))

	// Corners do not share normals across faces.
	assert.Len(t, topo.Normals, 6*4)
	for i, n := range topo.NormalIndex {
		if topo.Faces.CoordIndex[i] == brep.Sentinel {
			assert.Equal(t, brep.Sentinel, n)
			continue
		}
		assert.InDelta(t, 1, topo.Normals[n].Len(), 1e-5)
	}

	assert.Equal(t, 12, topo.EdgeCount())
	for _, run := range splitRuns(topo.Edges.CoordIndex) {
		assert.Len(t, run, 2, "box edges are single segments")
	}

	assert.Equal(t, 8, topo.VertexCount())
	assert.Equal(t, 8, topo.PointStart)
	assert.Equal(t, topo.Faces.Vertices, topo.Points.Vertices[:8])
}

func TestExtractCylinderLoops(t *testing.T) {
	k := facet.New()
	m, err := k.ToMesh(k.Cylinder(4, 1, 16))
	require.NoError(t, err)

	topo := Extract(m, Options{})
	assert.Equal(t, 3, topo.FaceCount(), "side and two caps")
	assert.Equal(t, 2, topo.EdgeCount())
	for _, run := range splitRuns(topo.Edges.CoordIndex) {
		require.Len(t, run, 17)
		assert.Equal(t, run[0], run[16], "closed edges repeat their first vertex")
	}
	assert.Equal(t, 2, topo.VertexCount())
}

func TestExtractFeatureAngle(t *testing.T) {
	k := facet.New()
	m, err := k.ToMesh(k.Cylinder(4, 1, 16))
	require.NoError(t, err)

	// 22.5 degrees between facets splits the side at a 10 degree limit.
	topo := Extract(m, Options{FeatureAngle: 10})
	assert.Equal(t, 16+2, topo.FaceCount())
	assert.Equal(t, 16*3, topo.EdgeCount(), "16 seams plus each cap circle split at every seam")
	assert.Equal(t, 32, topo.VertexCount())
}

func TestExtractDropsDegenerates(t *testing.T) {
	m := &kernel.Mesh{
		Vertices: []float32{
			0, 0, 0, 1, 0, 0, 0, 1, 0, // triangle
			0, 0, 0, 1, 0, 0, 2, 0, 0, // collinear
			5, 5, 5, 5, 5, 5, 6, 5, 5, // repeated vertex
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8, 0, 1, 99},
	}
	topo := Extract(m, Options{})
	assert.Equal(t, []int32{1}, topo.Faces.PartIndex)
	assert.Equal(t, []int32{0, 1, 2, brep.Sentinel}, topo.Faces.CoordIndex)
	assert.Equal(t, 1, topo.EdgeCount(), "an open triangle has one boundary loop")
	assert.Equal(t, 1, topo.VertexCount())
}

func TestExtractWeldEpsilon(t *testing.T) {
	m := &kernel.Mesh{
		Vertices: []float32{
			0, 0, 0, 1, 0, 0, 0, 1, 0,
			1.004, 0, 0, 1, 1, 0, 0, 1.004, 0,
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
	}
	assert.Len(t, Extract(m, Options{}).Faces.Vertices, 6)

	welded := Extract(m, Options{WeldEpsilon: 0.01})
	assert.Len(t, welded.Faces.Vertices, 4)
	assert.Equal(t, 1, welded.FaceCount(), "welded coplanar triangles form one face")
}

func TestExtractWeldAcrossCellBoundary(t *testing.T) {
	// (1, 0.0051) and (0.0051, 1) sit half a tolerance away from the
	// corners they belong to.
	m := &kernel.Mesh{
		Vertices: []float32{
			0, 0, 0, 1, 0, 0, 0, 1, 0,
			1, 0.0051, 0, 1, 1, 0, 0.0051, 1, 0,
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
	}
	welded := Extract(m, Options{WeldEpsilon: 0.01})
	assert.Len(t, welded.Faces.Vertices, 4)
	assert.Equal(t, 1, welded.FaceCount())

	apart := Extract(m, Options{WeldEpsilon: 0.005})
	assert.Len(t, apart.Faces.Vertices, 6, "points farther apart than the tolerance stay separate")
}

func TestExtractEmpty(t *testing.T) {
	topo := Extract(&kernel.Mesh{}, Options{})
	assert.Zero(t, topo.FaceCount())
	assert.Zero(t, topo.EdgeCount())
	assert.Zero(t, topo.VertexCount())
}

func TestTopologyState(t *testing.T) {
	topo := Extract(cubeMesh(t), Options{})
	red := []mgl32.Vec3{{1, 0, 0}}
	st := topo.State(brep.State{MaterialBinding: brep.Overall, Normals: red})
	assert.Equal(t, brep.PerVertexIndexed, st.NormalBinding)
	assert.Equal(t, brep.Overall, st.MaterialBinding)
	assert.Equal(t, topo.Normals, st.Normals)
}

func splitRuns(idx []int32) [][]int32 {
	var runs [][]int32
	var cur []int32
	for _, v := range idx {
		if v < 0 {
			if len(cur) > 0 {
				runs = append(runs, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, v)
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}
