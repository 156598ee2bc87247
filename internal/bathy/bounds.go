package bathy

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// minExtent is the smallest planar extent kept along an axis. Coincident
// coordinates are expanded to it so the grid always has at least one cell.
const minExtent = 1e-6

// BoundingBox is the axis-aligned planar extent of a point cloud together with
// its depth range. It is computed once per build and never modified afterwards.
type BoundingBox struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// RefZ returns the reference depth used to normalise heights, the deepest sounding.
func (b BoundingBox) RefZ() float64 {
	return b.MinZ
}

// Width returns the extent along X.
func (b BoundingBox) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the extent along Y.
func (b BoundingBox) Height() float64 {
	return b.MaxY - b.MinY
}

// Contains reports whether (x, y) lies within the box, edges included.
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Intersects reports whether the two boxes overlap in the plane.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return !(other.MaxX < b.MinX ||
		other.MinX > b.MaxX ||
		other.MaxY < b.MinY ||
		other.MinY > b.MaxY)
}

// Expand returns a new box grown by margin on every planar side.
func (b BoundingBox) Expand(margin float64) BoundingBox {
	return BoundingBox{
		MinX: b.MinX - margin,
		MaxX: b.MaxX + margin,
		MinY: b.MinY - margin,
		MaxY: b.MaxY + margin,
		MinZ: b.MinZ,
		MaxZ: b.MaxZ,
	}
}

// boundsOf computes the bounding box of points. points must not be empty.
func boundsOf(points []r3.Vec) BoundingBox {
	first := points[0]
	b := BoundingBox{
		MinX: first.X, MaxX: first.X,
		MinY: first.Y, MaxY: first.Y,
		MinZ: first.Z, MaxZ: first.Z,
	}
	for _, p := range points[1:] {
		b.MinX = min(b.MinX, p.X)
		b.MaxX = max(b.MaxX, p.X)
		b.MinY = min(b.MinY, p.Y)
		b.MaxY = max(b.MaxY, p.Y)
		b.MinZ = min(b.MinZ, p.Z)
		b.MaxZ = max(b.MaxZ, p.Z)
	}

	if b.MaxX-b.MinX < minExtent {
		b.MaxX = b.MinX + epsilonFor(b.MinX)
	}
	if b.MaxY-b.MinY < minExtent {
		b.MaxY = b.MinY + epsilonFor(b.MinY)
	}
	return b
}

// epsilonFor scales minExtent for large coordinates (e.g. UTM northings) so the
// expansion survives float64 rounding.
func epsilonFor(v float64) float64 {
	return max(minExtent, math.Abs(v)*1e-12)
}
