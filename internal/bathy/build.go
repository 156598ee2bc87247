package bathy

import (
	"fmt"
	"math"

	"github.com/roman-kulish/bathymetry/internal/survey"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultMaxCells caps the size of the grid Build is allowed to allocate.
const DefaultMaxCells = 1 << 26

// Option configures Build, HeightMapFromPoints and BuildFromPoints.
type Option func(*builder)

// WithAggregation sets how soundings sharing a cell are reduced. Mean is the default.
func WithAggregation(a Aggregation) Option {
	return func(b *builder) {
		b.aggregation = a
	}
}

// WithMaxCells sets the largest grid, in cells, a build may allocate.
func WithMaxCells(n int) Option {
	return func(b *builder) {
		if n > 0 {
			b.maxCells = n
		}
	}
}

type builder struct {
	aggregation Aggregation
	maxCells    int
}

func newBuilder(opts ...Option) *builder {
	b := &builder{
		aggregation: Mean,
		maxCells:    DefaultMaxCells,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Result is the outcome of a build: a mesh and a height map sharing the same
// grid, and the bounding box of every sounding used to build them.
type Result struct {
	Mesh      *Mesh
	HeightMap *HeightMap
	Bounds    BoundingBox
}

// Build flattens the beams of pings into a point cloud, grids it at the given
// resolution and returns the aggregated height map together with its
// triangulated mesh.
//
// Build fails with *EmptyInputError when pings is empty or carries no beams,
// with *InvalidParameterError when resolution is not a positive finite number
// or a beam has non-finite coordinates, and with *DegenerateGeometryError when
// no usable grid can be laid over the points.
func Build(pings []survey.Ping, resolution float64, opts ...Option) (*Result, error) {
	if len(pings) == 0 {
		return nil, &EmptyInputError{msg: "no pings to build a mesh from"}
	}
	if err := validateResolution(resolution); err != nil {
		return nil, err
	}

	points := make([]r3.Vec, 0, survey.BeamCount(pings))
	for i, ping := range pings {
		for j, beam := range ping.Beams {
			if !isFinite(beam) {
				return nil, &InvalidParameterError{
					Name:   fmt.Sprintf("pings[%d].beams[%d]", i, j),
					Value:  beam,
					Reason: "coordinates must be finite",
				}
			}
			points = append(points, beam)
		}
	}
	if len(points) == 0 {
		return nil, &EmptyInputError{msg: fmt.Sprintf("%d pings carry no beams", len(pings))}
	}

	return newBuilder(opts...).build(points, resolution)
}

// BuildFromPoints is Build for an already flattened point cloud.
func BuildFromPoints(points []r3.Vec, resolution float64, opts ...Option) (*Result, error) {
	hm, bounds, err := HeightMapFromPoints(points, resolution, opts...)
	if err != nil {
		return nil, err
	}
	return &Result{Mesh: MeshFromHeightMap(hm), HeightMap: hm, Bounds: bounds}, nil
}

func (b *builder) build(points []r3.Vec, resolution float64) (*Result, error) {
	hm, bounds, err := b.heightMap(points, resolution)
	if err != nil {
		return nil, err
	}
	return &Result{Mesh: MeshFromHeightMap(hm), HeightMap: hm, Bounds: bounds}, nil
}

func validateResolution(resolution float64) error {
	if math.IsNaN(resolution) || math.IsInf(resolution, 0) || resolution <= 0 {
		return &InvalidParameterError{
			Name:   "resolution",
			Value:  resolution,
			Reason: "must be a positive finite number",
		}
	}
	return nil
}
