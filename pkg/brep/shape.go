package brep

import (
	"log"

	"github.com/chazu/brepview/pkg/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape is implemented by FaceSet, EdgeSet and PointSet.
type Shape interface {
	// Kind returns the primitive kind the shape is made of.
	Kind() Kind

	// Render draws the shape and its selection and highlight overlays.
	Render(rc *RenderContext)

	// HandleEvent applies a highlight or selection change and reports
	// whether the node's overlay state changed.
	HandleEvent(ev Event) bool

	// ResolvePick maps a primitive of this shape to its part.
	ResolvePick(p Primitive) (Detail, bool)

	// Pick returns the nearest primitive hit by the ray. tolerance is the
	// world-space distance within which lines and points count as hit.
	Pick(origin, dir mgl32.Vec3, tolerance float32) (Detail, bool)

	// SelectionState summarizes the current selection.
	SelectionState() SelectionState
}

var (
	_ Shape = (*FaceSet)(nil)
	_ Shape = (*EdgeSet)(nil)
	_ Shape = (*PointSet)(nil)
)

// OverlayOrder controls when overlay passes are drawn relative to the base
// pass.
type OverlayOrder int

const (
	// OverlayLegacy draws selection and highlight both before and after
	// the base pass: selection, highlight, base, highlight, selection.
	OverlayLegacy OverlayOrder = iota
	// OverlayClean draws the base pass, then selection, then highlight.
	OverlayClean
)

func (o OverlayOrder) String() string {
	switch o {
	case OverlayLegacy:
		return "legacy"
	case OverlayClean:
		return "clean"
	default:
		return "unknown"
	}
}

// ParseOverlayOrder maps "legacy" or "clean" to an order.
func ParseOverlayOrder(s string) (OverlayOrder, bool) {
	switch s {
	case "legacy":
		return OverlayLegacy, true
	case "clean":
		return OverlayClean, true
	}
	return 0, false
}

// RenderContext carries everything a render pass needs. The binding state
// is passed explicitly instead of being read from a global state stack.
type RenderContext struct {
	GL     gl.Context
	Camera *gl.Camera // optional; point glyphs need it for screen-constant size
	State  State

	Overlay        OverlayOrder
	PointSize      float32 // glyph radius in pixels
	LineWidth      float32 // pixels
	SphereSegments int
}

func (rc *RenderContext) sphere() *gl.Sphere {
	n := rc.SphereSegments
	if n == 0 {
		n = gl.DefaultSphereSegments
	}
	return gl.UnitSphere(n)
}

// passes runs base, selection and highlight in the configured order,
// skipping overlays that have nothing to draw.
func passes(rc *RenderContext, o *overlay, base, selection, highlight func()) {
	hasSel := o.sel.Len() > 0
	hasHL := o.hl.Active()
	switch rc.Overlay {
	case OverlayClean:
		base()
		if hasSel {
			selection()
		}
		if hasHL {
			highlight()
		}
	default:
		if hasSel {
			selection()
		}
		if hasHL {
			highlight()
		}
		base()
		if hasHL {
			highlight()
		}
		if hasSel {
			selection()
		}
	}
}

// beginOverlay switches the context to the flat overlay color.
func beginOverlay(ctx gl.Context, c gl.Color) {
	ctx.SetLightModel(gl.BaseColor)
	ctx.Color(c)
}

// endOverlay restores shaded rendering for the following pass.
func endOverlay(ctx gl.Context) {
	ctx.SetLightModel(gl.Phong)
}

// sendOverall emits the first material when the binding is Overall.
func sendOverall(ctx gl.Context, b Binding, materials []gl.Color) {
	if b == Overall && len(materials) > 0 {
		ctx.Color(materials[0])
	}
}

func warnRange(node, what string, index int32, limit int) {
	log.Printf("brep: %s: %s index %d out of range [0,%d)", node, what, index, limit)
}
