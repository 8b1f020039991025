package view

import (
	"errors"
	"fmt"

	"github.com/chazu/brepview/pkg/brep"
	"github.com/chazu/brepview/pkg/graph"
	"github.com/go-gl/mathgl/mgl32"
)

// Hit is a pick resolved to an object element.
type Hit struct {
	Object string
	Kind   brep.Kind
	// Index is the face, edge or vertex number within the object.
	Index  int
	Detail brep.Detail
}

// Element returns the scene element kind of the hit.
func (h Hit) Element() graph.Element {
	return elementOf(h.Kind)
}

func (h Hit) String() string {
	return fmt.Sprintf("%s %s %d", h.Object, h.Kind, h.Index)
}

func elementOf(k brep.Kind) graph.Element {
	return graph.Element(k.String())
}

func kindOf(e graph.Element) (brep.Kind, bool) {
	return brep.ParseKind(string(e))
}

// selectable is implemented by the brep shapes through their overlay.
type selectable interface {
	Selection() brep.Selection
	Highlight() brep.Highlight
}

// ---------------------------------------------------------------------------
// Picking
// ---------------------------------------------------------------------------

// Pick returns the element under the screen point (x, y). Vertices win over
// edges and edges over faces, as long as no face is in front of them.
func (v *View) Pick(x, y float32) (Hit, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pickLocked(x, y)
}

type candidate struct {
	obj *Object
	d   brep.Detail
}

func (v *View) pickLocked(x, y float32) (Hit, bool) {
	origin, dir := v.cam.Ray(x, y)
	tol := v.opts.PickRadius * v.cam.PixelSize(v.cam.Center)

	var best [3]*candidate
	consider := func(o *Object, s brep.Shape) {
		d, ok := s.Pick(origin, dir, tol)
		if !ok {
			return
		}
		k := int(s.Kind())
		if best[k] == nil || d.Distance < best[k].d.Distance {
			best[k] = &candidate{obj: o, d: d}
		}
	}
	for _, o := range v.objects {
		for _, s := range o.Shapes() {
			consider(o, s)
		}
	}

	face := best[brep.KindFace]
	visible := func(c *candidate) bool {
		return c != nil && (face == nil || c.d.Distance <= face.d.Distance+tol)
	}
	for _, k := range []brep.Kind{brep.KindPoint, brep.KindLine, brep.KindFace} {
		if c := best[k]; visible(c) {
			return hitOf(c.obj, c.d), true
		}
	}
	return Hit{}, false
}

func hitOf(o *Object, d brep.Detail) Hit {
	h := Hit{Object: o.Name, Kind: d.Kind, Index: d.PartIndex, Detail: d}
	if d.Kind == brep.KindPoint {
		h.Index = d.Index
	}
	return h
}

// PickRay is Pick for an explicit world-space ray, used by tests and by
// callers that build rays themselves.
func (v *View) PickRay(origin, dir mgl32.Vec3, tolerance float32) (Hit, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var (
		hit  Hit
		best float32
		ok   bool
	)
	for _, o := range v.objects {
		for _, s := range o.Shapes() {
			if d, found := s.Pick(origin, dir, tolerance); found && (!ok || d.Distance < best) {
				hit, best, ok = hitOf(o, d), d.Distance, true
			}
		}
	}
	return hit, ok
}

// ---------------------------------------------------------------------------
// Interactive selection
// ---------------------------------------------------------------------------

// Preselect highlights the element under (x, y) and turns the highlight off
// everywhere else. It reports whether any overlay changed.
func (v *View) Preselect(x, y float32) (Hit, bool, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	hit, ok := v.pickLocked(x, y)
	var target brep.Shape
	var ev brep.Event = brep.HighlightEvent{}
	if ok {
		target = v.byName[hit.Object].Shape(hit.Kind)
		p := hit.Detail.Primitive()
		ev = brep.HighlightEvent{On: true, Color: v.opts.Highlight, Element: &p}
	}
	changed := false
	for _, o := range v.objects {
		for _, s := range o.Shapes() {
			if s == target {
				changed = s.HandleEvent(ev) || changed
			} else {
				changed = s.HandleEvent(brep.HighlightEvent{}) || changed
			}
		}
	}
	return hit, ok, changed
}

// Select picks at (x, y). Without toggle the picked element replaces the
// selection and a miss clears it. With toggle the picked element is added
// or removed and a miss changes nothing.
func (v *View) Select(x, y float32, toggle bool) (Hit, bool, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	hit, ok := v.pickLocked(x, y)
	changed := false
	if !toggle {
		changed = v.clearSelectionLocked()
	}
	if !ok {
		return hit, false, changed
	}

	s := v.byName[hit.Object].Shape(hit.Kind)
	p := hit.Detail.Primitive()
	mode := brep.SelectAppend
	if toggle && s.(selectable).Selection().Contains(int32(hit.Detail.PartIndex)) {
		mode = brep.SelectRemove
	}
	changed = s.HandleEvent(brep.SelectionEvent{Mode: mode, Color: v.opts.Selection, Element: &p}) || changed
	return hit, true, changed
}

// ClearSelection empties the selection of every shape.
func (v *View) ClearSelection() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clearSelectionLocked()
}

func (v *View) clearSelectionLocked() bool {
	changed := false
	for _, o := range v.objects {
		for _, s := range o.Shapes() {
			changed = s.HandleEvent(brep.SelectionEvent{Mode: brep.SelectNone, Color: v.opts.Selection}) || changed
		}
	}
	return changed
}

// Selected lists the selected elements in draw order.
func (v *View) Selected() []Hit {
	v.mu.Lock()
	defer v.mu.Unlock()
	var hits []Hit
	for _, o := range v.objects {
		for _, s := range o.Shapes() {
			for _, part := range s.(selectable).Selection().Indices() {
				hits = append(hits, v.partHit(o, s.Kind(), int(part)))
			}
		}
	}
	return hits
}

// Highlighted returns the highlighted element, if any.
func (v *View) Highlighted() (Hit, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, o := range v.objects {
		for _, s := range o.Shapes() {
			if h := s.(selectable).Highlight(); h.Active() {
				return v.partHit(o, s.Kind(), int(h.Index)), true
			}
		}
	}
	return Hit{}, false
}

// partHit describes a selected or highlighted part. Point parts are
// coordinate indices and map back to vertex numbers.
func (v *View) partHit(o *Object, k brep.Kind, part int) Hit {
	h := Hit{Object: o.Name, Kind: k, Index: part}
	h.Detail = brep.Detail{Kind: k, PartIndex: part}
	if k == brep.KindPoint {
		h.Index = part - o.Points.First()
		h.Detail.Index = h.Index
		h.Detail.CoordIndex = part
	}
	return h
}

// ---------------------------------------------------------------------------
// Scripted actions
// ---------------------------------------------------------------------------

// ApplyAll applies actions in order and joins their errors.
func (v *View) ApplyAll(actions []graph.Action) error {
	var errs []error
	for _, a := range actions {
		if _, err := v.Apply(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Apply turns a scripted action into events for the named object's
// shapes. It reports whether any overlay changed.
func (v *View) Apply(a graph.Action) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	o := v.byName[a.Shape]
	if o == nil {
		return false, fmt.Errorf("view: no shape named %q", a.Shape)
	}

	var targets []brep.Shape
	if a.Element == "" {
		targets = o.Shapes()
	} else {
		k, ok := kindOf(a.Element)
		if !ok {
			return false, fmt.Errorf("view: %s: invalid element %q", a.Op, a.Element)
		}
		targets = []brep.Shape{o.Shape(k)}
	}

	switch a.Op {
	case graph.ActionSelectAll:
		return dispatch(targets, brep.SelectionEvent{Mode: brep.SelectAll, Color: v.opts.Selection}), nil
	case graph.ActionSelectNone:
		return dispatch(targets, brep.SelectionEvent{Mode: brep.SelectNone, Color: v.opts.Selection}), nil
	case graph.ActionHighlightOff:
		return dispatch(targets, brep.HighlightEvent{}), nil
	}

	if !a.Op.NeedsElement() || a.Element == "" {
		return false, fmt.Errorf("view: %s %q: missing element", a.Op, a.Shape)
	}
	s := targets[0]
	p, ok := v.primitiveFor(o, s.Kind(), a.Index)
	if !ok {
		return false, fmt.Errorf("view: shape %q has no %s %d", a.Shape, a.Element, a.Index)
	}

	switch a.Op {
	case graph.ActionSelectAppend:
		return s.HandleEvent(brep.SelectionEvent{Mode: brep.SelectAppend, Color: v.opts.Selection, Element: &p}), nil
	case graph.ActionSelectRemove:
		return s.HandleEvent(brep.SelectionEvent{Mode: brep.SelectRemove, Color: v.opts.Selection, Element: &p}), nil
	default:
		changed := false
		for _, other := range v.objects {
			for _, sh := range other.Shapes() {
				if sh != s {
					changed = sh.HandleEvent(brep.HighlightEvent{}) || changed
				}
			}
		}
		ev := brep.HighlightEvent{On: true, Color: v.opts.Highlight, Element: &p}
		return s.HandleEvent(ev) || changed, nil
	}
}

// Dispatch delivers ev to the shape of kind k in the named object.
func (v *View) Dispatch(name string, k brep.Kind, ev brep.Event) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	o := v.byName[name]
	if o == nil {
		return false, fmt.Errorf("view: no shape named %q", name)
	}
	s := o.Shape(k)
	if s == nil {
		return false, fmt.Errorf("view: invalid kind %v", k)
	}
	return s.HandleEvent(ev), nil
}

func dispatch(shapes []brep.Shape, ev brep.Event) bool {
	changed := false
	for _, s := range shapes {
		changed = s.HandleEvent(ev) || changed
	}
	return changed
}

// primitiveFor returns a primitive lying in face, edge or vertex n.
func (v *View) primitiveFor(o *Object, k brep.Kind, n int) (brep.Primitive, bool) {
	if n < 0 {
		return brep.Primitive{}, false
	}
	switch k {
	case brep.KindFace:
		ranges := o.Faces.Mesh().PartRanges()
		if n >= len(ranges) || ranges[n].Triangles == 0 {
			return brep.Primitive{}, false
		}
		return brep.Primitive{Kind: k, Index: ranges[n].FirstTriangle}, true
	case brep.KindLine:
		seg, ok := firstSegment(o.Edges.Mesh().CoordIndex, n)
		return brep.Primitive{Kind: k, Index: seg}, ok
	case brep.KindPoint:
		if o.Points.First()+n >= len(o.Points.Mesh().Vertices) {
			return brep.Primitive{}, false
		}
		return brep.Primitive{Kind: k, Index: n}, true
	}
	return brep.Primitive{}, false
}

// firstSegment returns the ordinal of the first line segment of polyline
// part, numbering sections the way brep.ResolveEdgePart does.
func firstSegment(coordIndex []int32, part int) (int, bool) {
	seg, section := 0, 0
	for i, c := range coordIndex {
		if c < 0 {
			section++
			continue
		}
		if i+1 < len(coordIndex) && coordIndex[i+1] >= 0 {
			if section == part {
				return seg, true
			}
			seg++
		}
	}
	return 0, false
}
