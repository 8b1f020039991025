package graph

import "fmt"

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// MaxCylinderSegments bounds the facet count of a single cylinder.
const MaxCylinderSegments = 512

// validateGeometry runs all geometric checks.
func validateGeometry(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateDimensions(g)...)
	warnings = append(warnings, validateSegments(g)...)
	warnings = append(warnings, validateTransforms(g)...)
	errs = append(errs, validateColors(g)...)

	return errs, warnings
}

// validateDimensions checks that primitive sizes are positive.
func validateDimensions(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	bad := func(node *Node, what string, v float64) {
		if v <= 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s is %.4f, must be positive", what, v),
				Severity: SeverityError,
			})
		}
	}

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BoxData:
			bad(node, "box size X", d.Size.X)
			bad(node, "box size Y", d.Size.Y)
			bad(node, "box size Z", d.Size.Z)
		case CylinderData:
			bad(node, "cylinder height", d.Height)
			bad(node, "cylinder radius", d.Radius)
		}
	}
	return errs
}

// validateSegments warns about cylinders too coarse to look round or so
// fine they dominate tessellation.
func validateSegments(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Nodes {
		d, ok := node.Data.(CylinderData)
		if !ok || d.Segments == 0 {
			continue
		}
		switch {
		case d.Segments < 3:
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("cylinder has %d segments; at least 3 are used", d.Segments),
			})
		case d.Segments > MaxCylinderSegments:
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("cylinder has %d segments; more than %d slows tessellation", d.Segments, MaxCylinderSegments),
			})
		}
	}
	return warnings
}

// validateTransforms warns about placements that do nothing.
func validateTransforms(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Nodes {
		d, ok := node.Data.(TransformData)
		if !ok {
			continue
		}
		if (d.Translation == nil || d.Translation.IsZero()) && (d.Rotation == nil || d.Rotation.IsZero()) {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: "placement has no translation or rotation",
			})
		}
	}
	return warnings
}

// validateColors checks shape colors parse as "#RRGGBB" or "#RGB".
func validateColors(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		d, ok := node.Data.(ShapeData)
		if !ok || d.Color == "" {
			continue
		}
		if !validHexColor(d.Color) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("shape %q color %q is not #RRGGBB", node.Name, d.Color),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func validHexColor(s string) bool {
	if len(s) != 7 && len(s) != 4 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
