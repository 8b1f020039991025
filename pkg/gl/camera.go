package gl

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective view volume looking from Eye towards Center.
// Screen coordinates have their origin in the top-left corner.
type Camera struct {
	Eye    mgl32.Vec3
	Center mgl32.Vec3
	Up     mgl32.Vec3
	FovY   float32 // vertical field of view in degrees
	Near   float32
	Far    float32
	Width  int
	Height int
}

// NewCamera returns a camera looking down -Z at the origin.
func NewCamera(width, height int) *Camera {
	return &Camera{
		Eye:    mgl32.Vec3{0, 0, 10},
		Center: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   45,
		Near:   0.1,
		Far:    1000,
		Width:  width,
		Height: height,
	}
}

// View returns the world-to-eye matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Center, c.Up)
}

// Projection returns the eye-to-clip matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.aspect(), c.Near, c.Far)
}

func (c *Camera) aspect() float32 {
	if c.Height == 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

// forward returns the unit view direction.
func (c *Camera) forward() mgl32.Vec3 {
	return c.Center.Sub(c.Eye).Normalize()
}

// basis returns the camera's right and true-up unit vectors.
func (c *Camera) basis() (right, up mgl32.Vec3) {
	f := c.forward()
	right = f.Cross(c.Up).Normalize()
	up = right.Cross(f)
	return right, up
}

// Project maps a world point to screen coordinates and normalized depth.
// ok is false for points behind the eye.
func (c *Camera) Project(p mgl32.Vec3) (x, y, depth float32, ok bool) {
	clip := c.Projection().Mul4(c.View()).Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = (ndc.X() + 1) / 2 * float32(c.Width)
	y = (1 - ndc.Y()) / 2 * float32(c.Height)
	return x, y, ndc.Z(), true
}

// PixelSize returns the world-space length covered by one screen pixel at
// the depth of p. Multiplying a pixel radius by this value yields a world
// radius with constant apparent size under zoom.
func (c *Camera) PixelSize(p mgl32.Vec3) float32 {
	d := p.Sub(c.Eye).Dot(c.forward())
	if d < c.Near {
		d = c.Near
	}
	h := float32(c.Height)
	if h <= 0 {
		h = 1
	}
	return 2 * d * math32.Tan(mgl32.DegToRad(c.FovY)/2) / h
}

// Ray returns the eye position and the unit direction through the screen
// point (x, y).
func (c *Camera) Ray(x, y float32) (origin, dir mgl32.Vec3) {
	w, h := float32(c.Width), float32(c.Height)
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	ndcX := 2*x/w - 1
	ndcY := 1 - 2*y/h
	t := math32.Tan(mgl32.DegToRad(c.FovY) / 2)
	right, up := c.basis()
	dir = c.forward().
		Add(right.Mul(ndcX * t * c.aspect())).
		Add(up.Mul(ndcY * t)).
		Normalize()
	return c.Eye, dir
}

// Fit moves the eye so that the box [min, max] fills the view, keeping the
// current viewing direction.
func (c *Camera) Fit(min, max mgl32.Vec3) {
	center := min.Add(max).Mul(0.5)
	radius := max.Sub(min).Len() / 2
	if radius == 0 {
		radius = 1
	}
	dir := c.forward()
	if dir.Len() == 0 || math32.IsNaN(dir.X()) {
		dir = mgl32.Vec3{0, 0, -1}
	}
	dist := radius / math32.Sin(mgl32.DegToRad(c.FovY)/2)
	c.Center = center
	c.Eye = center.Sub(dir.Mul(dist))
	c.Near = dist / 100
	c.Far = dist + radius*4
}
