package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/brepview/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: select-all -> select_all
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	kind graph.NodeKind
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(%s %q)", n.kind, n.name)
	}
	return fmt.Sprintf("(%s %s)", n.kind, n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_face) and plain strings ("face").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toElement converts a keyword or string to a graph.Element.
func toElement(s zygo.Sexp) (graph.Element, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", fmt.Errorf("expected element keyword (:face, :edge, :vertex): %w", err)
	}
	return parseElement(name)
}

func parseElement(name string) (graph.Element, error) {
	e := graph.Element(name)
	if !graph.ValidElements[e] {
		return "", fmt.Errorf("invalid element %q, expected face, edge, or vertex", name)
	}
	return e, nil
}

// toSolidRef extracts the NodeID of a solid. Shapes are not solids: they
// cannot be placed or combined.
func toSolidRef(s zygo.Sexp) (graph.NodeID, error) {
	ref, ok := s.(*sexpNodeRef)
	if !ok {
		return graph.ZeroID, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
	}
	if ref.kind == graph.NodeShape {
		return graph.ZeroID, fmt.Errorf("shape %q is not a solid", ref.name)
	}
	return ref.id, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toShapeName accepts a shape name or a shape reference.
func toShapeName(s zygo.Sexp) (string, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		if ref.kind != graph.NodeShape {
			return "", fmt.Errorf("expected shape, got %s", ref.SexpString(nil))
		}
		return ref.name, nil
	}
	return toString(s)
}

// ---------------------------------------------------------------------------
// Node ID generation
// ---------------------------------------------------------------------------

// contentID derives a NodeID from a node's kind and content, so that
// re-evaluating the same source yields the same IDs and identical solids
// share one node.
func contentID(kind string, parts ...any) graph.NodeID {
	var b strings.Builder
	b.WriteString(kind)
	for _, p := range parts {
		b.WriteByte('/')
		switch v := p.(type) {
		case graph.NodeID:
			b.WriteString(v.String())
		case *graph.Vec3:
			if v != nil {
				b.WriteString(v.String())
			}
		default:
			fmt.Fprint(&b, v)
		}
	}
	return graph.NewNodeID(b.String())
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene builtins into a zygomys environment.
// The builtins operate on the provided SceneGraph, populating it during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.SceneGraph) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (box 40 20 5) or (box :size (vec3 40 20 5))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var size graph.Vec3

		switch {
		case pa.kw["size"] != nil:
			v, err := toVec3(pa.kw["size"])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
			}
			size = v
		case len(pa.positional) == 3:
			dims := [3]*float64{&size.X, &size.Y, &size.Z}
			for i, a := range pa.positional {
				f, err := toFloat64(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("box: dimension %d: %w", i+1, err)
				}
				*dims[i] = f
			}
		default:
			return zygo.SexpNull, fmt.Errorf("box requires three dimensions or :size")
		}

		id := contentID("box", size.String())
		g.AddNode(&graph.Node{ID: id, Kind: graph.NodePrimitive, Data: graph.BoxData{Size: size}})
		return &sexpNodeRef{id: id, kind: graph.NodePrimitive}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 10 :radius 3 :segments 24)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var cd graph.CylinderData

		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
			cd.Height = f
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
			cd.Radius = f
		}
		if v, ok := pa.kw["diameter"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: diameter: %w", err)
			}
			cd.Radius = f / 2
		}
		if v, ok := pa.kw["segments"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
			cd.Segments = n
		}

		id := contentID("cylinder", cd.Height, cd.Radius, cd.Segments)
		g.AddNode(&graph.Node{ID: id, Kind: graph.NodePrimitive, Data: cd})
		return &sexpNodeRef{id: id, kind: graph.NodePrimitive}, nil
	})

	// -----------------------------------------------------------------------
	// (place solid :at (vec3 0 0 19) :rotate (vec3 0 0 90))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a solid as first argument")
		}
		childID, err := toSolidRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := graph.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		id := contentID("place", childID, td.Translation, td.Rotation)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeTransform,
			Children: []graph.NodeID{childID},
			Data:     td,
		})
		return &sexpNodeRef{id: id, kind: graph.NodeTransform}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...), (difference a b ...), (intersection a b ...)
	// -----------------------------------------------------------------------
	for _, op := range []graph.BooleanOp{graph.OpUnion, graph.OpDifference, graph.OpIntersection} {
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least two solids, got %d", name, len(args))
			}
			children := make([]graph.NodeID, len(args))
			parts := make([]any, len(args))
			for i, a := range args {
				id, err := toSolidRef(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", name, i+1, err)
				}
				children[i] = id
				parts[i] = id
			}

			id := contentID(name, parts...)
			g.AddNode(&graph.Node{
				ID:       id,
				Kind:     graph.NodeBoolean,
				Children: children,
				Data:     graph.BooleanData{Op: op},
			})
			return &sexpNodeRef{id: id, kind: graph.NodeBoolean}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (shape "bracket" solid :color "#4488cc")
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name and a solid")
		}

		shapeName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		if shapeName == "" {
			return zygo.SexpNull, fmt.Errorf("shape: name must not be empty")
		}
		if g.Lookup(shapeName) != nil {
			return zygo.SexpNull, fmt.Errorf("shape: %q is already defined", shapeName)
		}
		solid, err := toSolidRef(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape %q: %w", shapeName, err)
		}

		var sd graph.ShapeData
		if v, ok := pa.kw["color"]; ok {
			c, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("shape %q: color: %w", shapeName, err)
			}
			sd.Color = c
		}

		id := contentID("shape", shapeName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeShape,
			Name:     shapeName,
			Children: []graph.NodeID{solid},
			Data:     sd,
		})
		g.AddRoot(id)
		return &sexpNodeRef{id: id, kind: graph.NodeShape, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (select "bracket" :face 2), (deselect "bracket" :edge 0),
	// (highlight "bracket" :vertex 3)
	// -----------------------------------------------------------------------
	elementActions := map[string]graph.ActionOp{
		"select":    graph.ActionSelectAppend,
		"deselect":  graph.ActionSelectRemove,
		"highlight": graph.ActionHighlight,
	}
	for fn, op := range elementActions {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires a shape", name)
			}
			shapeName, err := toShapeName(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: shape: %w", name, err)
			}

			a := graph.Action{Shape: shapeName, Op: op}
			for kw, v := range pa.kw {
				el, err := parseElement(kw)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s %q: %w", name, shapeName, err)
				}
				if a.Element != "" {
					return zygo.SexpNull, fmt.Errorf("%s %q: more than one element", name, shapeName)
				}
				idx, err := toInt(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s %q: %s index: %w", name, shapeName, el, err)
				}
				a.Element, a.Index = el, idx
			}
			if a.Element == "" {
				return zygo.SexpNull, fmt.Errorf("%s %q: requires :face, :edge or :vertex", name, shapeName)
			}
			g.AddAction(a)
			return zygo.SexpNull, nil
		})
	}

	// -----------------------------------------------------------------------
	// (select-all "bracket" :only :edge), (clear-selection "bracket"),
	// (unhighlight "bracket")
	// -----------------------------------------------------------------------
	shapeActions := map[string]graph.ActionOp{
		"select_all":      graph.ActionSelectAll,
		"clear_selection": graph.ActionSelectNone,
		"unhighlight":     graph.ActionHighlightOff,
	}
	for fn, op := range shapeActions {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires a shape", name)
			}
			shapeName, err := toShapeName(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: shape: %w", name, err)
			}

			a := graph.Action{Shape: shapeName, Op: op}
			if v, ok := pa.kw["only"]; ok {
				el, err := toElement(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s %q: only: %w", name, shapeName, err)
				}
				a.Element = el
			}
			g.AddAction(a)
			return zygo.SexpNull, nil
		})
	}
}
