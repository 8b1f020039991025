// Package graph defines the scene document for brepview.
// A scene is an immutable DAG of solids (primitives, placements and
// booleans) under named shape nodes, plus a list of scripted selection and
// highlight actions. Each evaluation produces a new graph.
package graph
