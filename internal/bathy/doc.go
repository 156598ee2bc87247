// Package bathy turns multibeam soundings into a regular height map and a
// triangulated surface mesh sharing one planar grid.
//
// Build is a pure function of its inputs: it performs no I/O, holds no state
// between calls and is safe to call concurrently on independent inputs.
// Cells without soundings are kept as holes; they carry the no-data sentinel in
// the height map and never take part in a mesh face.
package bathy
