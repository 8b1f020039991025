// Package brep renders triangulated boundary-representation shapes with
// part-level selection and highlight overlays.
//
// A shape is a flat vertex array addressed by an index stream. Face sets
// group consecutive triangles into parts (the faces of the B-Rep) through a
// part-length table; edge sets delimit polylines with -1 sentinels; point
// sets draw individual vertices. Each variant implements Shape: it renders
// into a gl.Context, reacts to highlight and selection events, and turns
// low-level picks (a triangle, a line segment, a point) into part-level
// details.
//
// Overlays never copy or re-triangulate the base mesh. A selected or
// highlighted part is drawn again from its sub-range of the same index
// stream, in the overlay color, with the attribute cursors seeked to match.
package brep
