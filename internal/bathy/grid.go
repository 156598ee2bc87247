package bathy

import (
	"fmt"
	"math"
)

// boundarySnap is the distance below which a scaled coordinate is considered to
// sit exactly on a cell boundary.
const boundarySnap = 1e-9

// Grid is a regular lattice of square cells anchored at (MinX, MinY). Cell
// (row, col) covers [MinX+col*Resolution, MinX+(col+1)*Resolution) along X and
// the same along Y, rows growing northwards.
type Grid struct {
	MinX, MinY float64
	Resolution float64
	Rows, Cols int
}

// newGrid lays a grid over b so that every point of b falls into a cell.
func newGrid(b BoundingBox, resolution float64, maxCells int) (Grid, error) {
	cols := math.Floor(b.Width()/resolution) + 1
	rows := math.Floor(b.Height()/resolution) + 1

	if math.IsNaN(cols) || math.IsNaN(rows) || cols < 1 || rows < 1 {
		return Grid{}, &DegenerateGeometryError{
			msg: fmt.Sprintf("grid over extent %gx%g at resolution %g has no cells", b.Width(), b.Height(), resolution),
		}
	}
	if math.IsInf(cols, 0) || math.IsInf(rows, 0) || cols*rows > float64(maxCells) {
		return Grid{}, &InvalidParameterError{
			Name:   "resolution",
			Value:  resolution,
			Reason: fmt.Sprintf("grid of %.0fx%.0f cells exceeds the limit of %d cells", cols, rows, maxCells),
		}
	}

	return Grid{
		MinX:       b.MinX,
		MinY:       b.MinY,
		Resolution: resolution,
		Rows:       int(rows),
		Cols:       int(cols),
	}, nil
}

// Len returns the number of cells in the grid.
func (g Grid) Len() int {
	return g.Rows * g.Cols
}

// Index returns the row-major index of cell (row, col).
func (g Grid) Index(row, col int) int {
	return row*g.Cols + col
}

// RowCol is the inverse of Index.
func (g Grid) RowCol(index int) (row, col int) {
	return index / g.Cols, index % g.Cols
}

// Cell returns the cell containing (x, y). ok is false when the point lies
// outside the grid.
func (g Grid) Cell(x, y float64) (row, col int, ok bool) {
	col = cellOf(x-g.MinX, g.Resolution)
	row = cellOf(y-g.MinY, g.Resolution)
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return 0, 0, false
	}
	return row, col, true
}

// Node returns the planar position of the lattice node anchoring cell (row, col).
func (g Grid) Node(row, col int) (x, y float64) {
	return g.MinX + float64(col)*g.Resolution, g.MinY + float64(row)*g.Resolution
}

// Extent returns the planar area covered by all cells of the grid.
func (g Grid) Extent() BoundingBox {
	return BoundingBox{
		MinX: g.MinX,
		MaxX: g.MinX + float64(g.Cols)*g.Resolution,
		MinY: g.MinY,
		MaxY: g.MinY + float64(g.Rows)*g.Resolution,
	}
}

// cellOf floor-divides offset by resolution. Quotients within boundarySnap of
// an integer are treated as lying on that boundary so lattice-aligned inputs
// are not pushed into the previous cell by rounding error.
func cellOf(offset, resolution float64) int {
	q := offset / resolution
	if r := math.Round(q); math.Abs(q-r) < boundarySnap {
		q = r
	}
	return int(math.Floor(q))
}
