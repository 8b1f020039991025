package brep

// advance describes when an attribute stream produces a value while the
// triangle decoder walks a face stream.
type advance struct {
	perVertex bool // every vertex
	perFace   bool // first vertex of every triangle
	perPart   bool // first vertex of the first triangle of every part
	indexed   bool // values are looked up through an index stream
}

// advancePolicy is keyed by Binding.
var advancePolicy = [...]advance{
	BindingUnset:     {},
	Overall:          {},
	PerVertex:        {perVertex: true},
	PerVertexIndexed: {perVertex: true, indexed: true},
	PerPart:          {perPart: true},
	PerPartIndexed:   {perPart: true, indexed: true},
	PerFace:          {perFace: true},
	PerFaceIndexed:   {perFace: true, indexed: true},
}

func policyFor(b Binding) advance {
	if b < 0 || int(b) >= len(advancePolicy) {
		return advance{}
	}
	return advancePolicy[b]
}

// cursor walks one attribute stream (material, normal or texture
// coordinate). pos is either the positional attribute index or the offset
// into index, depending on the policy.
type cursor struct {
	policy advance
	index  []int32
	pos    int
}

func newCursor(b Binding, index []int32) cursor {
	return cursor{policy: policyFor(b), index: index}
}

// next returns the attribute index for vertex k (0..2) of a triangle and
// whether the stream emits at this vertex. The cursor advances whenever it
// emits, even if the resulting index turns out to be out of range, so all
// streams stay aligned with the vertex stream.
func (c *cursor) next(k int, firstOfPart bool) (int, bool) {
	p := c.policy
	switch {
	case p.perVertex:
	case p.perFace:
		if k != 0 {
			return 0, false
		}
	case p.perPart:
		if k != 0 || !firstOfPart {
			return 0, false
		}
	default:
		return 0, false
	}
	pos := c.pos
	c.pos++
	if !p.indexed {
		return pos, true
	}
	if pos >= len(c.index) {
		return -1, true
	}
	return int(c.index[pos]), true
}

// skipPart accounts for a part without triangles.
func (c *cursor) skipPart() {
	if c.policy.perPart {
		c.pos++
	}
}

// skipSeparator keeps a vertex-indexed stream aligned with a separator
// slot consumed from the coordinate stream.
func (c *cursor) skipSeparator() {
	if c.policy.perVertex && c.policy.indexed {
		c.pos++
	}
}

// seek positions the cursor at the start of part p, described by r.
func (c *cursor) seek(p int, r PartRange) {
	switch pol := c.policy; {
	case pol.perVertex && pol.indexed:
		c.pos = r.Start
	case pol.perVertex:
		c.pos = r.FirstTriangle * 3
	case pol.perFace:
		c.pos = r.FirstTriangle
	case pol.perPart:
		c.pos = p
	default:
		c.pos = 0
	}
}

// cursors bundles the state of one decoder pass.
type cursors struct {
	material cursor
	normal   cursor
	texCoord cursor
	part     int   // next entry of the part table
	pending  int32 // triangles declared for the current part, -1 past the table
	emitted  int32 // triangles emitted in the current part
}

// nextPart loads the next non-empty part, advancing per-part cursors past
// any empty ones.
func (c *cursors) nextPart(parts []int32) {
	c.emitted = 0
	c.pending = c.take(parts)
	for c.pending == 0 {
		c.pending = c.take(parts)
		c.material.skipPart()
		c.normal.skipPart()
	}
}

func (c *cursors) take(parts []int32) int32 {
	if c.part >= len(parts) {
		return -1
	}
	n := parts[c.part]
	c.part++
	return n
}
