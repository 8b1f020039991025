package graph

import "fmt"

// ActionOp is a scripted change to a shape's selection or highlight.
type ActionOp int

const (
	ActionSelectAll ActionOp = iota
	ActionSelectNone
	ActionSelectAppend
	ActionSelectRemove
	ActionHighlight
	ActionHighlightOff
)

func (op ActionOp) String() string {
	switch op {
	case ActionSelectAll:
		return "select-all"
	case ActionSelectNone:
		return "select-none"
	case ActionSelectAppend:
		return "select-append"
	case ActionSelectRemove:
		return "select-remove"
	case ActionHighlight:
		return "highlight"
	case ActionHighlightOff:
		return "highlight-off"
	default:
		return fmt.Sprintf("ActionOp(%d)", int(op))
	}
}

// NeedsElement reports whether the op addresses a single element.
func (op ActionOp) NeedsElement() bool {
	return op == ActionSelectAppend || op == ActionSelectRemove || op == ActionHighlight
}

// Element names the sub-shape an action addresses.
type Element string

const (
	ElementFace   Element = "face"
	ElementEdge   Element = "edge"
	ElementVertex Element = "vertex"
)

// ValidElements is the set of element names accepted by actions.
var ValidElements = map[Element]bool{
	ElementFace:   true,
	ElementEdge:   true,
	ElementVertex: true,
}

// Action is applied to the named shape after tessellation, in script
// order. Element and Index are set when Op.NeedsElement; Element alone
// restricts All and None to one kind of sub-shape.
type Action struct {
	Shape   string   `json:"shape"`
	Op      ActionOp `json:"op"`
	Element Element  `json:"element,omitempty"`
	Index   int      `json:"index"`
}

func (a Action) String() string {
	if a.Op.NeedsElement() {
		return fmt.Sprintf("%s %q %s %d", a.Op, a.Shape, a.Element, a.Index)
	}
	return fmt.Sprintf("%s %q", a.Op, a.Shape)
}
