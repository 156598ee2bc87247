package bathy

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

const (
	Mean     Aggregation = iota // Arithmetic mean of the soundings in a cell
	Median                      // Median of the soundings in a cell
	Shoalest                    // Highest (least deep) sounding in a cell
	Deepest                     // Lowest (deepest) sounding in a cell
)

var aggregationNames = map[Aggregation]string{
	Mean:     "mean",
	Median:   "median",
	Shoalest: "shoalest",
	Deepest:  "deepest",
}

// Aggregation selects how the soundings falling into one cell are reduced to
// a single height.
type Aggregation int

func (a Aggregation) String() string {
	if name, ok := aggregationNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Aggregation(%d)", int(a))
}

// ParseAggregation converts a name such as "median" into an Aggregation.
func ParseAggregation(s string) (Aggregation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range aggregationNames {
		if name == s {
			return a, nil
		}
	}
	return 0, &InvalidParameterError{Name: "aggregation", Value: s, Reason: "unknown aggregation"}
}

// reduce aggregates heights sorted in ascending order.
func (a Aggregation) reduce(sorted []float64) float64 {
	switch a {
	case Median:
		n := len(sorted)
		if n%2 == 1 {
			return sorted[n/2]
		}
		return (sorted[n/2-1] + sorted[n/2]) / 2
	case Shoalest:
		return sorted[len(sorted)-1]
	case Deepest:
		return sorted[0]
	default:
		return stat.Mean(sorted, nil)
	}
}

// IsNoData reports whether v is the height map's no-data sentinel.
func IsNoData(v float64) bool {
	return math.IsNaN(v)
}

// HeightMap is a row-major raster of heights aligned with Grid. Cells without
// soundings hold the no-data sentinel (NaN), never zero.
type HeightMap struct {
	Grid
	Values []float64 // One height per cell, NaN when the cell is empty
	Counts []int     // Number of soundings aggregated into each cell
}

// At returns the height of cell (row, col).
func (h *HeightMap) At(row, col int) float64 {
	return h.Values[h.Index(row, col)]
}

// IsPopulated reports whether cell (row, col) received at least one sounding.
func (h *HeightMap) IsPopulated(row, col int) bool {
	return !IsNoData(h.At(row, col))
}

// Populated returns the number of cells holding a height.
func (h *HeightMap) Populated() int {
	var n int
	for _, v := range h.Values {
		if !IsNoData(v) {
			n++
		}
	}
	return n
}

// Range returns the lowest and highest heights in the map. ok is false when
// every cell is empty.
func (h *HeightMap) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range h.Values {
		if IsNoData(v) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// HeightAt returns the height of the cell containing (x, y). ok is false when
// the point lies outside the grid or its cell is empty.
func (h *HeightMap) HeightAt(x, y float64) (float64, bool) {
	row, col, ok := h.Cell(x, y)
	if !ok {
		return 0, false
	}
	v := h.At(row, col)
	return v, !IsNoData(v)
}

type cellHeight struct {
	cell int
	z    float64
}

// HeightMapFromPoints bins points into a grid of the given resolution and
// aggregates their heights per cell.
//
// Points are sorted by cell and height before reduction, so the result is
// bit-identical for any ordering of the same points.
func HeightMapFromPoints(points []r3.Vec, resolution float64, opts ...Option) (*HeightMap, BoundingBox, error) {
	b := newBuilder(opts...)
	if err := validateResolution(resolution); err != nil {
		return nil, BoundingBox{}, err
	}
	if len(points) == 0 {
		return nil, BoundingBox{}, &EmptyInputError{msg: "no points to build a height map from"}
	}
	for i, p := range points {
		if !isFinite(p) {
			return nil, BoundingBox{}, &InvalidParameterError{
				Name:   fmt.Sprintf("points[%d]", i),
				Value:  p,
				Reason: "coordinates must be finite",
			}
		}
	}
	return b.heightMap(points, resolution)
}

func (b *builder) heightMap(points []r3.Vec, resolution float64) (*HeightMap, BoundingBox, error) {
	bounds := boundsOf(points)

	grid, err := newGrid(bounds, resolution, b.maxCells)
	if err != nil {
		return nil, BoundingBox{}, err
	}

	binned := make([]cellHeight, len(points))
	for i, p := range points {
		row, col, ok := grid.Cell(p.X, p.Y)
		if !ok {
			// bounds contain every point, so this only happens on a broken invariant
			return nil, BoundingBox{}, &DegenerateGeometryError{
				msg: fmt.Sprintf("point (%g, %g) falls outside a grid built over its own bounds", p.X, p.Y),
			}
		}
		binned[i] = cellHeight{cell: grid.Index(row, col), z: p.Z}
	}
	slices.SortFunc(binned, func(x, y cellHeight) int {
		if c := cmp.Compare(x.cell, y.cell); c != 0 {
			return c
		}
		return cmp.Compare(x.z, y.z)
	})

	hm := &HeightMap{
		Grid:   grid,
		Values: make([]float64, grid.Len()),
		Counts: make([]int, grid.Len()),
	}
	for i := range hm.Values {
		hm.Values[i] = math.NaN()
	}

	heights := make([]float64, 0, 16)
	for start := 0; start < len(binned); {
		end := start
		heights = heights[:0]
		for end < len(binned) && binned[end].cell == binned[start].cell {
			heights = append(heights, binned[end].z)
			end++
		}
		cell := binned[start].cell
		hm.Values[cell] = b.aggregation.reduce(heights)
		hm.Counts[cell] = len(heights)
		start = end
	}

	return hm, bounds, nil
}

func isFinite(p r3.Vec) bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
