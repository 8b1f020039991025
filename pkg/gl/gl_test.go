package gl

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#FF0080")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.R, 1e-6)
	assert.InDelta(t, 0.0, c.G, 1e-6)
	assert.InDelta(t, 128.0/255, c.B, 1e-6)
	assert.InDelta(t, 1.0, c.A, 1e-6)
	assert.Equal(t, "#FF0080", c.Hex())

	c, err = ParseColor("#00000080")
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, c.A, 1e-6)
	assert.Equal(t, "#00000080", c.Hex())

	c, err = ParseColor("#f80")
	require.NoError(t, err)
	assert.Equal(t, "#FF8800", c.Hex())

	for _, bad := range []string{"", "#1234", "#GGGGGG", "12345"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestRecorderStats(t *testing.T) {
	var r Recorder
	r.Begin(Triangles)
	r.Color(RGB(1, 0, 0))
	for i := 0; i < 6; i++ {
		r.Normal(mgl32.Vec3{0, 0, 1})
		r.Vertex(mgl32.Vec3{float32(i), 0, 0})
	}
	r.End()

	r.Begin(LineStrip)
	r.Vertex(mgl32.Vec3{0, 0, 0})
	r.Vertex(mgl32.Vec3{1, 0, 0})
	r.Vertex(mgl32.Vec3{1, 1, 0})
	r.End()

	r.Begin(Points)
	r.Vertex(mgl32.Vec3{})
	r.End()

	s := r.Stats()
	assert.Equal(t, 3, s.Batches)
	assert.Equal(t, 2, s.Triangles)
	assert.Equal(t, 2, s.Lines)
	assert.Equal(t, 1, s.Points)
	assert.Equal(t, 1, s.Colors)
	assert.Equal(t, 6, s.Normals)
	assert.Equal(t, 10, r.Count(OpVertex))
	assert.Len(t, r.Vertices(), 10)

	var replayed Recorder
	r.Replay(&replayed)
	assert.Equal(t, r.Commands, replayed.Commands)
	assert.Equal(t, s, replayed.Stats())

	r.Reset()
	assert.Empty(t, r.Commands)
	assert.Equal(t, Stats{}, r.Stats())
}

func TestCameraProjectCenter(t *testing.T) {
	cam := NewCamera(200, 100)
	x, y, _, ok := cam.Project(mgl32.Vec3{0, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, 100, x, 1e-3)
	assert.InDelta(t, 50, y, 1e-3)

	// Up in world space is up on screen.
	_, y2, _, ok := cam.Project(mgl32.Vec3{0, 1, 0})
	require.True(t, ok)
	assert.Less(t, y2, y)

	_, _, _, ok = cam.Project(mgl32.Vec3{0, 0, 20})
	assert.False(t, ok, "point behind the eye")
}

func TestCameraRayThroughCenter(t *testing.T) {
	cam := NewCamera(200, 100)
	o, d := cam.Ray(100, 50)
	assert.Equal(t, cam.Eye, o)
	assert.InDelta(t, 0, d.X(), 1e-5)
	assert.InDelta(t, 0, d.Y(), 1e-5)
	assert.InDelta(t, -1, d.Z(), 1e-5)

	// A ray through a projected point passes through that point.
	p := mgl32.Vec3{1, 0.5, 0}
	x, y, _, _ := cam.Project(p)
	o, d = cam.Ray(x, y)
	toP := p.Sub(o).Normalize()
	assert.InDelta(t, 1, toP.Dot(d), 1e-4)
}

func TestCameraPixelSizeScalesWithDistance(t *testing.T) {
	cam := NewCamera(100, 100)
	near := cam.PixelSize(mgl32.Vec3{0, 0, 5})
	far := cam.PixelSize(mgl32.Vec3{0, 0, 0})
	assert.InDelta(t, 2*near, far, 1e-5)
}

func TestCameraFit(t *testing.T) {
	cam := NewCamera(100, 100)
	cam.Fit(mgl32.Vec3{10, 10, 10}, mgl32.Vec3{20, 20, 20})
	assert.Equal(t, mgl32.Vec3{15, 15, 15}, cam.Center)
	for _, p := range []mgl32.Vec3{{10, 10, 10}, {20, 20, 20}, {10, 20, 10}} {
		x, y, _, ok := cam.Project(p)
		require.True(t, ok)
		assert.True(t, x >= 0 && x <= 100 && y >= 0 && y <= 100, "corner %v projected off screen", p)
	}
}

func TestUnitSphere(t *testing.T) {
	s := UnitSphere(DefaultSphereSegments)
	assert.Same(t, s, UnitSphere(DefaultSphereSegments))
	// Two triangles per quad except the single triangle fans at the poles.
	assert.Equal(t, 12*12*2-2*12, s.TriangleCount())
	for _, p := range s.Triangles {
		assert.InDelta(t, 1, p.Len(), 1e-5)
	}

	var r Recorder
	s.Draw(&r, mgl32.Vec3{1, 2, 3}, 0.5)
	assert.Equal(t, s.TriangleCount(), r.Stats().Triangles)
	for _, v := range r.Vertices() {
		assert.InDelta(t, 0.5, v.Sub(mgl32.Vec3{1, 2, 3}).Len(), 1e-5)
	}
}

func TestRasterDepthTest(t *testing.T) {
	cam := NewCamera(64, 64)
	r := NewRaster(cam)
	r.Clear(RGB(0, 0, 0))
	r.SetLightModel(BaseColor)
	tri := func(c Color, z, s float32) {
		r.Begin(Triangles)
		r.Color(c)
		r.Vertex(mgl32.Vec3{-s, -s, z})
		r.Vertex(mgl32.Vec3{s, -s, z})
		r.Vertex(mgl32.Vec3{0, s, z})
		r.End()
	}

	tri(RGB(1, 0, 0), 0, 2)
	tri(RGB(0, 1, 0), -3, 4)
	center := r.Image().RGBAAt(32, 36)
	assert.Equal(t, uint8(255), center.R, "farther triangle stays behind")
	assert.Equal(t, uint8(0), center.G)

	outside := r.Image().RGBAAt(49, 52)
	assert.Equal(t, uint8(255), outside.G, "farther triangle fills uncovered pixels")

	tri(RGB(0, 0, 1), 0, 2)
	center = r.Image().RGBAAt(32, 36)
	assert.Equal(t, uint8(255), center.B, "coplanar overlay drawn later wins")

	r.Clear(RGB(0, 0, 0))
	tri(RGB(0, 1, 0), -3, 4)
	assert.Equal(t, uint8(255), r.Image().RGBAAt(32, 36).G, "clear resets depth")
}

func TestRasterPointRadius(t *testing.T) {
	paint := func(radius float32) Color {
		r := NewRaster(NewCamera(64, 64))
		r.Clear(RGB(0, 0, 0))
		r.PointRadius = radius
		r.SetLineWidth(1)
		r.Begin(Points)
		r.Color(RGB(1, 1, 1))
		r.Vertex(mgl32.Vec3{})
		r.End()
		c := r.Image().RGBAAt(36, 32)
		return RGB(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255)
	}
	assert.Equal(t, RGB(1, 1, 1), paint(6))
	assert.Equal(t, RGB(0, 0, 0), paint(2))
}

func TestRasterPaintsTriangle(t *testing.T) {
	cam := NewCamera(64, 64)
	r := NewRaster(cam)
	r.Clear(RGB(0, 0, 0))
	r.SetLightModel(BaseColor)
	r.Begin(Triangles)
	r.Color(RGB(1, 0, 0))
	r.Vertex(mgl32.Vec3{-2, -2, 0})
	r.Vertex(mgl32.Vec3{2, -2, 0})
	r.Vertex(mgl32.Vec3{0, 2, 0})
	r.End()

	c := r.Image().RGBAAt(32, 36)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)

	corner := r.Image().RGBAAt(1, 1)
	assert.Equal(t, uint8(0), corner.R)

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))
	assert.NotZero(t, buf.Len())
}
