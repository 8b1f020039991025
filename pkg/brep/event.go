package brep

import "github.com/chazu/brepview/pkg/gl"

// Event is delivered to a Shape by the selection manager. It is either a
// HighlightEvent or a SelectionEvent.
type Event interface {
	event()
}

// HighlightEvent turns the preselection highlight on or off. When On, the
// Element identifies the primitive under the cursor.
type HighlightEvent struct {
	On      bool
	Color   gl.Color
	Element *Primitive
}

func (HighlightEvent) event() {}

// SelectMode is the kind of selection change.
type SelectMode int

const (
	SelectAll SelectMode = iota
	SelectNone
	SelectAppend
	SelectRemove
)

func (m SelectMode) String() string {
	switch m {
	case SelectAll:
		return "all"
	case SelectNone:
		return "none"
	case SelectAppend:
		return "append"
	case SelectRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// ParseSelectMode maps "all", "none", "append" or "remove" to a mode.
func ParseSelectMode(s string) (SelectMode, bool) {
	for m := SelectAll; m <= SelectRemove; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// SelectionEvent changes the selection. Append and Remove need an Element.
type SelectionEvent struct {
	Mode    SelectMode
	Color   gl.Color
	Element *Primitive
}

func (SelectionEvent) event() {}
