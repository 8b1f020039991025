package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log"
	"strings"

	"github.com/chazu/brepview/pkg/config"
	"github.com/chazu/brepview/pkg/engine"
	"github.com/chazu/brepview/pkg/kernel"
	"github.com/chazu/brepview/pkg/kernel/facet"
	"github.com/chazu/brepview/pkg/kernel/sdfx"
	"github.com/chazu/brepview/pkg/tessellate"
	"github.com/chazu/brepview/pkg/view"
	"github.com/samber/lo"
)

// colorPalette is a default palette used to assign distinct colors to shapes
// that do not set one.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	cfg    config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	// fallback builds scenes the exact kernel cannot, when set.
	fallback kernel.Kernel
	view     *view.View
}

// ShapeInfo summarizes one displayed shape for the frontend.
type ShapeInfo struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	Kernel    string `json:"kernel"`
	Faces     int    `json:"faces"`
	Edges     int    `json:"edges"`
	Vertices  int    `json:"vertices"`
	Triangles int    `json:"triangles"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Image    string          `json:"image"` // base64 PNG, empty on error
	Shapes   []ShapeInfo     `json:"shapes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// PickData describes the element under the cursor.
type PickData struct {
	Hit     bool   `json:"hit"`
	Shape   string `json:"shape,omitempty"`
	Element string `json:"element,omitempty"`
	Index   int    `json:"index"`
}

// InteractionResult is returned by the mouse bindings. Image is only set
// when an overlay changed and the frontend has to redraw.
type InteractionResult struct {
	Pick      PickData   `json:"pick"`
	Image     string     `json:"image,omitempty"`
	Selection []PickData `json:"selection"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App from a validated configuration.
func NewAppWithConfig(cfg config.Config) *App {
	a := &App{
		cfg:    cfg,
		engine: engine.NewEngine(),
		view:   view.New(cfg.Render.Width, cfg.Render.Height, view.OptionsFrom(cfg)),
	}
	sampled := sdfx.New(sdfx.WithMeshCells(cfg.Tessellation.MeshCells))
	switch cfg.Tessellation.Kernel {
	case "sdfx":
		a.kernel = sampled
	case "facet":
		a.kernel = facet.New()
	default:
		a.kernel, a.fallback = facet.New(), sampled
	}
	return a
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes Lisp source and returns the rendered scene + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Shapes:   []ShapeInfo{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a scene graph.
	res, err := a.engine.EvaluateResult(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the frontend format.
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}

	// Step 3: Tessellate the scene graph into faces, edges and vertices.
	opts := tessellate.Options{
		FeatureAngle: a.cfg.Tessellation.FeatureAngle,
		WeldEpsilon:  a.cfg.Tessellation.WeldEpsilon,
	}
	parts, err := tessellate.Tessellate(res.Graph, a.kernel, opts)
	if errors.Is(err, facet.ErrUnsupported) && a.fallback != nil {
		log.Printf("Tessellate: %v; retrying with %s", err, a.fallback.Name())
		parts, err = tessellate.Tessellate(res.Graph, a.fallback, opts)
	}
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}
	for i, p := range parts {
		if p.Color == "" {
			p.Color = colorPalette[i%len(colorPalette)]
		}
	}

	// Step 4: Replace the displayed scene and replay scripted actions.
	if err := a.view.SetParts(parts); err != nil {
		log.Printf("View error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if err := a.view.ApplyAll(res.Graph.Actions); err != nil {
		for _, msg := range strings.Split(err.Error(), "\n") {
			result.Warnings = append(result.Warnings, EvalErrorData{Message: msg})
		}
	}

	result.Shapes = lo.Map(parts, func(p *tessellate.Part, _ int) ShapeInfo {
		return ShapeInfo{
			Name:      p.Name,
			Color:     p.Color,
			Kernel:    p.Kernel,
			Faces:     p.Topology.FaceCount(),
			Edges:     p.Topology.EdgeCount(),
			Vertices:  p.Topology.VertexCount(),
			Triangles: p.Mesh.TriangleCount(),
		}
	})
	result.Image = a.renderImage()
	return result
}

// Pick reports the element under the screen point without changing state.
func (a *App) Pick(x, y float64) PickData {
	hit, ok := a.view.Pick(float32(x), float32(y))
	return pickData(hit, ok)
}

// Preselect highlights the element under the cursor.
func (a *App) Preselect(x, y float64) InteractionResult {
	hit, ok, changed := a.view.Preselect(float32(x), float32(y))
	return a.interaction(pickData(hit, ok), changed)
}

// Select picks at the screen point. toggle adds or removes the element
// instead of replacing the selection.
func (a *App) Select(x, y float64, toggle bool) InteractionResult {
	hit, ok, changed := a.view.Select(float32(x), float32(y), toggle)
	return a.interaction(pickData(hit, ok), changed)
}

// ClearSelection empties the selection.
func (a *App) ClearSelection() InteractionResult {
	changed := a.view.ClearSelection()
	return a.interaction(PickData{}, changed)
}

// Resize changes the viewport and returns the re-rendered image.
func (a *App) Resize(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	a.view.Resize(width, height)
	return a.renderImage()
}

func (a *App) interaction(p PickData, changed bool) InteractionResult {
	r := InteractionResult{
		Pick: p,
		Selection: lo.Map(a.view.Selected(), func(h view.Hit, _ int) PickData {
			return pickData(h, true)
		}),
	}
	if changed {
		r.Image = a.renderImage()
	}
	return r
}

func (a *App) renderImage() string {
	var buf bytes.Buffer
	if err := a.view.RenderPNG(&buf); err != nil {
		log.Printf("Render error: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func pickData(h view.Hit, ok bool) PickData {
	if !ok {
		return PickData{}
	}
	return PickData{Hit: true, Shape: h.Object, Element: string(h.Element()), Index: h.Index}
}
