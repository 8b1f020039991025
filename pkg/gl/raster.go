package gl

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
)

// ambient is the minimum brightness of a Phong-shaded triangle.
const ambient = 0.25

// DefaultPointRadius is the radius in pixels of a Points vertex.
const DefaultPointRadius = 3

// depthBias is the fraction of a fragment's eye depth by which it may lie
// behind the stored depth and still be drawn. Coplanar overlays and edges
// on their faces stay visible.
const depthBias = 0.01

type rasterVertex struct {
	world  mgl32.Vec3
	normal mgl32.Vec3
	color  Color
	x, y   float64
	z      float32 // distance in front of the eye along the view axis
	ok     bool
}

// Raster is a software Context that projects primitives through a Camera
// and paints them into an RGBA image with a headlight. draw2d computes the
// antialiased coverage of each primitive into a scratch layer; covered
// pixels are then depth tested against a per-pixel buffer of eye depths
// and blended into the image. Overlay passes drawn later win over
// coplanar geometry but not over nearer surfaces.
type Raster struct {
	Camera *Camera

	// PointRadius is the radius in pixels of Points vertices.
	PointRadius float32

	img     *image.RGBA
	scratch *image.RGBA
	gc      *draw2dimg.GraphicContext
	depth   []float32

	prim  Primitive
	color Color
	norm  mgl32.Vec3
	light LightModel
	width float32
	batch []rasterVertex
}

var _ Context = (*Raster)(nil)

// NewRaster creates a raster sized to the camera viewport.
func NewRaster(cam *Camera) *Raster {
	bounds := image.Rect(0, 0, cam.Width, cam.Height)
	scratch := image.NewRGBA(bounds)
	r := &Raster{
		Camera:      cam,
		PointRadius: DefaultPointRadius,
		img:         image.NewRGBA(bounds),
		scratch:     scratch,
		gc:          draw2dimg.NewGraphicContext(scratch),
		depth:       make([]float32, bounds.Dx()*bounds.Dy()),
		color:       RGB(0.8, 0.8, 0.8),
		width:       1,
	}
	r.resetDepth()
	return r
}

// Image returns the target image.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Clear fills the whole image with c and empties the depth buffer.
func (r *Raster) Clear(c Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
	r.resetDepth()
}

func (r *Raster) resetDepth() {
	inf := math32.Inf(1)
	for i := range r.depth {
		r.depth[i] = inf
	}
}

// EncodePNG writes the image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

func (r *Raster) Begin(p Primitive) {
	r.prim = p
	r.batch = r.batch[:0]
}

func (r *Raster) End() {
	if r.prim == LineStrip {
		r.strokeStrip()
	}
	r.batch = r.batch[:0]
}

func (r *Raster) Color(c Color) { r.color = c }

func (r *Raster) Normal(n mgl32.Vec3) { r.norm = n }

// TexCoord is accepted and ignored; the raster does not sample textures.
func (r *Raster) TexCoord(mgl32.Vec2) {}

func (r *Raster) SetLightModel(m LightModel) { r.light = m }

func (r *Raster) SetLineWidth(w float32) {
	if w > 0 {
		r.width = w
	}
}

func (r *Raster) Vertex(v mgl32.Vec3) {
	x, y, _, ok := r.Camera.Project(v)
	z := v.Sub(r.Camera.Eye).Dot(r.Camera.forward())
	rv := rasterVertex{
		world: v, normal: r.norm, color: r.color,
		x: float64(x), y: float64(y), z: z,
		ok: ok && z > 0,
	}
	switch r.prim {
	case Points:
		r.fillPoint(rv)
	case Lines:
		r.batch = append(r.batch, rv)
		if len(r.batch) == 2 {
			r.strokeStrip()
			r.batch = r.batch[:0]
		}
	case LineStrip:
		r.batch = append(r.batch, rv)
	case Triangles:
		r.batch = append(r.batch, rv)
		if len(r.batch) == 3 {
			r.fillTriangle(r.batch[0], r.batch[1], r.batch[2])
			r.batch = r.batch[:0]
		}
	}
}

// -----------------------------------------------------------------------------
// Primitives
// -----------------------------------------------------------------------------

func (r *Raster) fillTriangle(a, b, c rasterVertex) {
	if !a.ok || !b.ok || !c.ok {
		return
	}
	col := a.color
	if r.light == Phong {
		col = col.Scale(r.shade(a, b, c))
	}
	area := (b.x-a.x)*(c.y-a.y) - (c.x-a.x)*(b.y-a.y)
	nearest := min(a.z, b.z, c.z)
	depth := func(px, py float64) float32 {
		if math.Abs(area) < 1e-9 {
			return nearest
		}
		// Screen-space barycentrics interpolate 1/z exactly under perspective.
		wb := ((px-a.x)*(c.y-a.y) - (c.x-a.x)*(py-a.y)) / area
		wc := ((b.x-a.x)*(py-a.y) - (px-a.x)*(b.y-a.y)) / area
		wa := 1 - wb - wc
		inv := wa/float64(a.z) + wb/float64(b.z) + wc/float64(c.z)
		if inv <= 0 {
			return nearest
		}
		return float32(1 / inv)
	}
	box := bounds(0, a, b, c)
	r.cover(box, col, depth, func(gc *draw2dimg.GraphicContext) {
		gc.BeginPath()
		gc.MoveTo(a.x, a.y)
		gc.LineTo(b.x, b.y)
		gc.LineTo(c.x, c.y)
		gc.Close()
		gc.Fill()
	})
}

// shade returns the headlight intensity for a triangle, two-sided.
func (r *Raster) shade(a, b, c rasterVertex) float32 {
	n := a.normal.Add(b.normal).Add(c.normal)
	if n.Len() == 0 {
		n = b.world.Sub(a.world).Cross(c.world.Sub(a.world))
	}
	if n.Len() == 0 {
		return 1
	}
	centroid := a.world.Add(b.world).Add(c.world).Mul(1.0 / 3)
	toEye := r.Camera.Eye.Sub(centroid)
	if toEye.Len() == 0 {
		return 1
	}
	d := math32.Abs(n.Normalize().Dot(toEye.Normalize()))
	return ambient + (1-ambient)*d
}

// strokeStrip draws the batch as consecutive segments. Segments with an
// endpoint behind the eye are dropped.
func (r *Raster) strokeStrip() {
	for i := 1; i < len(r.batch); i++ {
		r.segment(r.batch[i-1], r.batch[i])
	}
}

func (r *Raster) segment(a, b rasterVertex) {
	if !a.ok || !b.ok {
		return
	}
	dx, dy := b.x-a.x, b.y-a.y
	lenSq := dx*dx + dy*dy
	depth := func(px, py float64) float32 {
		t := 0.0
		if lenSq > 0 {
			t = ((px-a.x)*dx + (py-a.y)*dy) / lenSq
			t = max(0, min(1, t))
		}
		return float32(1 / ((1-t)/float64(a.z) + t/float64(b.z)))
	}
	width := float64(r.width)
	r.cover(bounds(width, a, b), a.color, depth, func(gc *draw2dimg.GraphicContext) {
		gc.SetLineWidth(width)
		gc.BeginPath()
		gc.MoveTo(a.x, a.y)
		gc.LineTo(b.x, b.y)
		gc.Stroke()
	})
}

func (r *Raster) fillPoint(v rasterVertex) {
	if !v.ok {
		return
	}
	radius := float64(r.PointRadius)
	if radius <= 0 {
		radius = DefaultPointRadius
	}
	depth := func(float64, float64) float32 { return v.z }
	r.cover(bounds(radius, v), v.color, depth, func(gc *draw2dimg.GraphicContext) {
		gc.BeginPath()
		draw2dkit.Circle(gc, v.x, v.y, radius)
		gc.Fill()
	})
}

// -----------------------------------------------------------------------------
// Coverage and depth
// -----------------------------------------------------------------------------

// bounds returns the pixel rectangle covering the vertices grown by pad.
func bounds(pad float64, vs ...rasterVertex) image.Rectangle {
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, v := range vs {
		x0, y0 = min(x0, v.x), min(y0, v.y)
		x1, y1 = max(x1, v.x), max(y1, v.y)
	}
	pad++
	return image.Rect(
		int(math.Floor(x0-pad)), int(math.Floor(y0-pad)),
		int(math.Ceil(x1+pad)), int(math.Ceil(y1+pad)),
	)
}

// cover paints the path drawn by path into the scratch layer within box,
// then blends col into every covered image pixel whose depth passes.
func (r *Raster) cover(box image.Rectangle, col Color, depth func(px, py float64) float32, path func(gc *draw2dimg.GraphicContext)) {
	box = box.Intersect(r.img.Bounds())
	if box.Empty() {
		return
	}
	clearRect(r.scratch, box)
	r.gc.SetFillColor(color.White)
	r.gc.SetStrokeColor(color.White)
	path(r.gc)

	src := col.NRGBA()
	stride := r.img.Bounds().Dx()
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			off := r.scratch.PixOffset(x, y)
			a := uint32(r.scratch.Pix[off+3])
			if a == 0 {
				continue
			}
			z := depth(float64(x)+0.5, float64(y)+0.5)
			i := y*stride + x
			if z > r.depth[i]+depthBias*z {
				continue
			}
			r.depth[i] = min(r.depth[i], z)
			blend(r.img.Pix[off:off+4], src, a)
		}
	}
}

// clearRect makes the pixels of img inside box transparent.
func clearRect(img *image.RGBA, box image.Rectangle) {
	for y := box.Min.Y; y < box.Max.Y; y++ {
		row := img.Pix[img.PixOffset(box.Min.X, y):img.PixOffset(box.Max.X, y)]
		clear(row)
	}
}

// blend composites an opaque src over the premultiplied pixel px with
// coverage a in [0, 255].
func blend(px []uint8, src color.NRGBA, a uint32) {
	a = a * uint32(src.A) / 255
	inv := 255 - a
	px[0] = uint8((uint32(src.R)*a + uint32(px[0])*inv) / 255)
	px[1] = uint8((uint32(src.G)*a + uint32(px[1])*inv) / 255)
	px[2] = uint8((uint32(src.B)*a + uint32(px[2])*inv) / 255)
	px[3] = uint8((255*a + uint32(px[3])*inv) / 255)
}
