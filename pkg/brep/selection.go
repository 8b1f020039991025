package brep

import (
	"github.com/chazu/brepview/pkg/gl"
	"github.com/samber/lo"
)

// NoHighlight is the highlight index meaning "nothing highlighted".
const NoHighlight int32 = -1

// Default overlay colors.
var (
	DefaultHighlightColor = gl.RGB(0.9, 0.9, 0.1)
	DefaultSelectionColor = gl.RGB(0.1, 0.8, 0.1)
)

// Selection is an ordered set of part indices drawn in Color. Shapes hand
// out copies; only their HandleEvent changes the selection they draw.
type Selection struct {
	indices []int32
	Color   gl.Color
}

// Indices returns a copy of the selected part indices in insertion order.
func (s Selection) Indices() []int32 {
	return append([]int32(nil), s.indices...)
}

// Len returns the number of selected parts.
func (s Selection) Len() int {
	return len(s.indices)
}

// Contains reports whether part i is selected.
func (s Selection) Contains(i int32) bool {
	return lo.Contains(s.indices, i)
}

// setRange replaces the selection with the parts [start, end).
func (s *Selection) setRange(start, end int) {
	if end <= start {
		s.indices = s.indices[:0]
		return
	}
	s.indices = lo.RangeFrom(int32(start), end-start)
}

func (s *Selection) clear() {
	s.indices = s.indices[:0]
}

// add appends part i at the end unless it is already selected, and
// reports whether the selection changed.
func (s *Selection) add(i int32) bool {
	if s.Contains(i) {
		return false
	}
	s.indices = append(s.indices, i)
	return true
}

// remove deletes the first occurrence of part i and reports whether it
// was present.
func (s *Selection) remove(i int32) bool {
	at := lo.IndexOf(s.indices, i)
	if at < 0 {
		return false
	}
	s.indices = append(s.indices[:at], s.indices[at+1:]...)
	return true
}

// Highlight is the single preselected part, or NoHighlight.
type Highlight struct {
	Index int32
	Color gl.Color
}

// Active reports whether a part is highlighted.
func (h Highlight) Active() bool {
	return h.Index >= 0
}

// SelectionState summarizes a node's selection.
type SelectionState int

const (
	NoSelection SelectionState = iota
	Selecting                  // some parts selected
	SelectedAll                // every part selected
)

func (s SelectionState) String() string {
	switch s {
	case NoSelection:
		return "none"
	case Selecting:
		return "selecting"
	case SelectedAll:
		return "all"
	default:
		return "unknown"
	}
}

// overlay holds the selection and highlight shared by all shape variants.
type overlay struct {
	sel Selection
	hl  Highlight
}

func newOverlay() overlay {
	return overlay{
		sel: Selection{Color: DefaultSelectionColor},
		hl:  Highlight{Index: NoHighlight, Color: DefaultHighlightColor},
	}
}

// Selection returns a copy of the node's selection.
func (o *overlay) Selection() Selection {
	return Selection{indices: o.sel.Indices(), Color: o.sel.Color}
}

// Highlight returns the node's highlight.
func (o *overlay) Highlight() Highlight {
	return o.hl
}

// state classifies the selection against the parts [start, end).
func (o *overlay) state(start, end int) SelectionState {
	if o.sel.Len() == 0 {
		return NoSelection
	}
	for i := start; i < end; i++ {
		if !o.sel.Contains(int32(i)) {
			return Selecting
		}
	}
	return SelectedAll
}

// apply runs the highlight/selection state machine for a node of the given
// kind whose parts are [start, end). resolve turns the event's primitive
// into a part index. It reports whether selection or highlight changed.
func (o *overlay) apply(ev Event, kind Kind, start, end int, resolve func(Primitive) (Detail, bool)) bool {
	switch ev := ev.(type) {
	case HighlightEvent:
		return o.applyHighlight(ev, kind, resolve)
	case SelectionEvent:
		return o.applySelection(ev, kind, start, end, resolve)
	}
	return false
}

func (o *overlay) applyHighlight(ev HighlightEvent, kind Kind, resolve func(Primitive) (Detail, bool)) bool {
	if !ev.On {
		return o.clearHighlight()
	}
	if ev.Element == nil {
		return false
	}
	if ev.Element.Kind != kind {
		return o.clearHighlight()
	}
	d, ok := resolve(*ev.Element)
	if !ok {
		return o.clearHighlight()
	}
	changed := o.hl.Index != int32(d.PartIndex) || o.hl.Color != ev.Color
	o.hl = Highlight{Index: int32(d.PartIndex), Color: ev.Color}
	return changed
}

func (o *overlay) clearHighlight() bool {
	if o.hl.Index == NoHighlight {
		return false
	}
	o.hl.Index = NoHighlight
	return true
}

func (o *overlay) applySelection(ev SelectionEvent, kind Kind, start, end int, resolve func(Primitive) (Detail, bool)) bool {
	switch ev.Mode {
	case SelectAll:
		o.sel.Color = ev.Color
		o.sel.setRange(start, end)
		return true
	case SelectNone:
		o.sel.Color = ev.Color
		if o.sel.Len() == 0 {
			return false
		}
		o.sel.clear()
		return true
	case SelectAppend, SelectRemove:
		if ev.Element == nil || ev.Element.Kind != kind {
			return false
		}
		d, ok := resolve(*ev.Element)
		if !ok {
			return false
		}
		o.sel.Color = ev.Color
		if ev.Mode == SelectAppend {
			return o.sel.add(int32(d.PartIndex))
		}
		return o.sel.remove(int32(d.PartIndex))
	}
	return false
}
