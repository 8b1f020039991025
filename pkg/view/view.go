// Package view holds the displayed scene: one face, edge and point shape
// per tessellated part, a camera, and the selection manager that routes
// picks and scripted actions to the shapes as highlight and selection
// events.
package view

import (
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/chazu/brepview/pkg/brep"
	"github.com/chazu/brepview/pkg/config"
	"github.com/chazu/brepview/pkg/gl"
	"github.com/chazu/brepview/pkg/tessellate"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

// Options control rendering and picking.
type Options struct {
	Overlay        brep.OverlayOrder
	PointSize      float32 // glyph radius in pixels
	LineWidth      float32
	SphereSegments int
	PickRadius     float32 // pixels

	FovY       float32
	Background gl.Color
	Highlight  gl.Color
	Selection  gl.Color
	EdgeColor  gl.Color
	PointColor gl.Color
}

// DefaultOptions returns the options of the default configuration.
func DefaultOptions() Options {
	return OptionsFrom(config.Default())
}

// OptionsFrom converts a validated configuration.
func OptionsFrom(c config.Config) Options {
	hl, sel := c.Selection.Colors()
	return Options{
		Overlay:        c.Render.OverlayOrder(),
		PointSize:      c.Render.PointSize,
		LineWidth:      c.Render.LineWidth,
		SphereSegments: c.Render.SphereSegments,
		PickRadius:     c.Render.PickRadius,
		FovY:           c.Camera.FovY,
		Background:     c.Render.BackgroundColor(),
		Highlight:      hl,
		Selection:      sel,
		EdgeColor:      gl.RGB(0.1, 0.1, 0.12),
		PointColor:     gl.RGB(0.15, 0.15, 0.2),
	}
}

// defaultShapeColor is used for parts without a color.
var defaultShapeColor = gl.RGB(0.8, 0.8, 0.8)

// Object is one displayed part.
type Object struct {
	Name   string
	Color  gl.Color
	Faces  *brep.FaceSet
	Edges  *brep.EdgeSet
	Points *brep.PointSet

	faceState  brep.State
	edgeState  brep.State
	pointState brep.State
}

// Shapes returns the object's shapes in draw order.
func (o *Object) Shapes() []brep.Shape {
	return []brep.Shape{o.Faces, o.Edges, o.Points}
}

// Shape returns the shape made of primitives of kind k.
func (o *Object) Shape(k brep.Kind) brep.Shape {
	switch k {
	case brep.KindFace:
		return o.Faces
	case brep.KindLine:
		return o.Edges
	case brep.KindPoint:
		return o.Points
	}
	return nil
}

// View is safe for concurrent use.
type View struct {
	mu      sync.Mutex
	opts    Options
	cam     *gl.Camera
	objects []*Object
	byName  map[string]*Object
}

// New returns an empty view with a width x height viewport.
func New(width, height int, opts Options) *View {
	cam := gl.NewCamera(width, height)
	if opts.FovY > 0 {
		cam.FovY = opts.FovY
	}
	cam.Up = mgl32.Vec3{0, 0, 1}
	cam.Eye = mgl32.Vec3{1, -1.2, 0.8}.Mul(10)
	return &View{
		opts:   opts,
		cam:    cam,
		byName: make(map[string]*Object),
	}
}

// SetParts replaces the displayed objects and fits the camera to them.
// Selection and highlight state does not survive the replacement.
func (v *View) SetParts(parts []*tessellate.Part) error {
	objects := make([]*Object, 0, len(parts))
	byName := make(map[string]*Object, len(parts))
	for _, p := range parts {
		if p == nil || p.Topology == nil {
			continue
		}
		if _, dup := byName[p.Name]; dup {
			return fmt.Errorf("view: duplicate part %q", p.Name)
		}
		color := defaultShapeColor
		if p.Color != "" {
			c, err := gl.ParseColor(p.Color)
			if err != nil {
				return fmt.Errorf("view: part %q: %w", p.Name, err)
			}
			color = c
		}
		topo := p.Topology
		o := &Object{
			Name:       p.Name,
			Color:      color,
			Faces:      brep.NewFaceSet(topo.Faces),
			Edges:      brep.NewEdgeSet(topo.Edges),
			Points:     brep.NewPointSet(topo.Points, topo.PointStart),
			faceState:  topo.State(brep.State{Materials: []gl.Color{color}}),
			edgeState:  brep.State{Materials: []gl.Color{v.opts.EdgeColor}},
			pointState: brep.State{Materials: []gl.Color{v.opts.PointColor}},
		}
		objects = append(objects, o)
		byName[o.Name] = o
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.objects = objects
	v.byName = byName
	v.fitLocked()
	return nil
}

func (v *View) fitLocked() {
	var lower, upper mgl32.Vec3
	found := false
	for _, o := range v.objects {
		bmin, bmax, ok := o.Faces.Mesh().Bounds()
		if !ok {
			continue
		}
		if !found {
			lower, upper, found = bmin, bmax, true
			continue
		}
		for i := 0; i < 3; i++ {
			lower[i] = min(lower[i], bmin[i])
			upper[i] = max(upper[i], bmax[i])
		}
	}
	if found {
		v.cam.Fit(lower, upper)
	}
}

// Object returns the object named name, or nil.
func (v *View) Object(name string) *Object {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.byName[name]
}

// Names returns the object names in draw order.
func (v *View) Names() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return lo.Map(v.objects, func(o *Object, _ int) string { return o.Name })
}

// Camera returns a copy of the current camera.
func (v *View) Camera() gl.Camera {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *v.cam
}

// Resize changes the viewport size.
func (v *View) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cam.Width, v.cam.Height = width, height
}

// Render draws every object into ctx: faces, then edges, then points.
func (v *View) Render(ctx gl.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renderLocked(ctx)
}

func (v *View) renderLocked(ctx gl.Context) {
	rc := brep.RenderContext{
		GL:             ctx,
		Camera:         v.cam,
		Overlay:        v.opts.Overlay,
		PointSize:      v.opts.PointSize,
		LineWidth:      v.opts.LineWidth,
		SphereSegments: v.opts.SphereSegments,
	}
	for _, o := range v.objects {
		rc.State = o.faceState
		o.Faces.Render(&rc)
		rc.State = o.edgeState
		o.Edges.Render(&rc)
		rc.State = o.pointState
		o.Points.Render(&rc)
	}
}

func (v *View) rasterLocked() *gl.Raster {
	r := gl.NewRaster(v.cam)
	if v.opts.PointSize > 0 {
		r.PointRadius = v.opts.PointSize
	}
	r.Clear(v.opts.Background)
	v.renderLocked(r)
	return r
}

// RenderImage rasterizes the scene in software.
func (v *View) RenderImage() *image.RGBA {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rasterLocked().Image()
}

// RenderPNG rasterizes the scene and writes it as PNG.
func (v *View) RenderPNG(w io.Writer) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	r := v.rasterLocked()
	if err := r.EncodePNG(w); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	return nil
}
