package brep

import (
	"github.com/chazu/brepview/pkg/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Binding maps attribute entries (materials, normals) onto the primitives
// of a shape.
type Binding int

const (
	BindingUnset     Binding = iota // not specified; resolves to the default
	Overall                         // one value for the whole shape
	PerVertex                       // consumed in vertex order
	PerVertexIndexed                // through an index stream mirroring CoordIndex
	PerPart                         // one value per part, in part order
	PerPartIndexed                  // one index per part
	PerFace                         // one value per triangle
	PerFaceIndexed                  // one index per triangle
)

// Default bindings used when the state leaves them unset.
const (
	DefaultMaterialBinding = Overall
	DefaultNormalBinding   = PerVertexIndexed
)

func (b Binding) String() string {
	switch b {
	case BindingUnset:
		return "unset"
	case Overall:
		return "overall"
	case PerVertex:
		return "per-vertex"
	case PerVertexIndexed:
		return "per-vertex-indexed"
	case PerPart:
		return "per-part"
	case PerPartIndexed:
		return "per-part-indexed"
	case PerFace:
		return "per-face"
	case PerFaceIndexed:
		return "per-face-indexed"
	default:
		return "unknown"
	}
}

// Valid reports whether b is one of the seven concrete bindings.
func (b Binding) Valid() bool {
	return b >= Overall && b <= PerFaceIndexed
}

// Indexed reports whether b reads its values through an index stream.
func (b Binding) Indexed() bool {
	return b == PerVertexIndexed || b == PerPartIndexed || b == PerFaceIndexed
}

// ParseBinding maps a binding name as printed by String back to its value.
// Unknown names yield BindingUnset.
func ParseBinding(s string) Binding {
	for b := Overall; b <= PerFaceIndexed; b++ {
		if b.String() == s {
			return b
		}
	}
	return BindingUnset
}

// State is the attribute state a shape is rendered with: the material and
// normal arrays, their bindings and index streams, and texture coordinates.
// Empty index streams for vertex-indexed bindings fall back to the shape's
// CoordIndex.
type State struct {
	MaterialBinding Binding
	NormalBinding   Binding

	Materials     []gl.Color
	MaterialIndex []int32
	Normals       []mgl32.Vec3
	NormalIndex   []int32

	Texturing     bool
	TexCoords     []mgl32.Vec2
	TexCoordIndex []int32
}

// ResolveBindings returns the effective material and normal bindings for s.
// Unset or unrecognized values fall back to DefaultMaterialBinding and
// DefaultNormalBinding.
func ResolveBindings(s State) (material, normal Binding) {
	material, normal = s.MaterialBinding, s.NormalBinding
	if !material.Valid() {
		material = DefaultMaterialBinding
	}
	if !normal.Valid() {
		normal = DefaultNormalBinding
	}
	return material, normal
}
