package bathy

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/bathymetry/internal/survey"
)

func pingsOf(points ...r3.Vec) []survey.Ping {
	base := time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC)
	pings := make([]survey.Ping, len(points))
	for i, p := range points {
		pings[i] = survey.Ping{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Position:  r3.Vec{X: p.X, Y: p.Y},
			Beams:     []r3.Vec{p},
		}
	}
	return pings
}

func gridPings(n int, spacing, z float64) []survey.Ping {
	var points []r3.Vec
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			points = append(points, r3.Vec{X: float64(col) * spacing, Y: float64(row) * spacing, Z: z})
		}
	}
	return pingsOf(points...)
}

func randomPings(rng *rand.Rand, n, beams int) []survey.Ping {
	pings := make([]survey.Ping, n)
	for i := range pings {
		pings[i].Timestamp = time.Unix(int64(i), 0)
		for j := 0; j < beams; j++ {
			pings[i].Beams = append(pings[i].Beams, r3.Vec{
				X: rng.Float64() * 40,
				Y: rng.Float64() * 25,
				Z: -20 - rng.Float64()*10,
			})
		}
	}
	return pings
}

func TestBuild_EmptyInput(t *testing.T) {
	t.Parallel()

	t.Run("no pings", func(t *testing.T) {
		t.Parallel()
		_, err := Build(nil, 1)
		require.Error(t, err)

		var target *EmptyInputError
		assert.ErrorAs(t, err, &target)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("pings without beams", func(t *testing.T) {
		t.Parallel()
		_, err := Build([]survey.Ping{{}, {}}, 1)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})
}

func TestBuild_InvalidResolution(t *testing.T) {
	t.Parallel()

	pings := pingsOf(r3.Vec{Z: -1})
	for _, res := range []float64{0, -0.5, math.NaN(), math.Inf(1)} {
		_, err := Build(pings, res)
		require.Error(t, err, "resolution %v", res)

		var target *InvalidParameterError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, "resolution", target.Name)
		assert.ErrorIs(t, err, ErrInvalidParameter)
		assert.Contains(t, err.Error(), "resolution")
	}
}

func TestBuild_NonFiniteBeam(t *testing.T) {
	t.Parallel()

	pings := pingsOf(r3.Vec{Z: -1}, r3.Vec{X: math.Inf(1), Z: -2})
	_, err := Build(pings, 1)

	var target *InvalidParameterError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "pings[1].beams[0]", target.Name)
}

func TestBuild_SparseDiagonalKeepsHole(t *testing.T) {
	t.Parallel()

	res, err := Build(pingsOf(r3.Vec{X: 0, Y: 0, Z: -10}, r3.Vec{X: 1, Y: 1, Z: -12}), 1.0)
	require.NoError(t, err)

	assert.Equal(t, BoundingBox{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1, MinZ: -12, MaxZ: -10}, res.Bounds)

	hm := res.HeightMap
	assert.Equal(t, 2, hm.Rows)
	assert.Equal(t, 2, hm.Cols)
	assert.Equal(t, 2, hm.Populated())
	assert.Equal(t, -10.0, hm.At(0, 0))
	assert.Equal(t, -12.0, hm.At(1, 1))
	assert.True(t, IsNoData(hm.At(0, 1)))
	assert.True(t, IsNoData(hm.At(1, 0)))

	assert.Len(t, res.Mesh.Vertices, 2)
	assert.Empty(t, res.Mesh.Faces)
}

func TestBuild_DenseGrid(t *testing.T) {
	t.Parallel()

	for _, spacing := range []float64{1, 0.5, 0.1} {
		res, err := Build(gridPings(3, spacing, -5), spacing)
		require.NoError(t, err)

		hm := res.HeightMap
		require.Equal(t, 3, hm.Rows, "spacing %v", spacing)
		require.Equal(t, 3, hm.Cols, "spacing %v", spacing)
		for i, v := range hm.Values {
			assert.Equal(t, -5.0, v, "cell %d", i)
			assert.Equal(t, 1, hm.Counts[i], "cell %d", i)
		}

		assert.Len(t, res.Mesh.Vertices, 9)
		assert.Len(t, res.Mesh.Faces, 8)
		require.NoError(t, res.Mesh.Validate())

		for i := range res.Mesh.Faces {
			assert.InDelta(t, 1.0, res.Mesh.Normal(i).Z, 1e-12, "face %d must face up", i)
		}
	}
}

func TestBuild_VerticesInRowMajorOrder(t *testing.T) {
	t.Parallel()

	res, err := Build(gridPings(4, 1, -3), 1)
	require.NoError(t, err)

	for i := 1; i < len(res.Mesh.Cells); i++ {
		assert.Less(t, res.Mesh.Cells[i-1], res.Mesh.Cells[i])
	}
	x, y := res.Mesh.Grid.Node(1, 2)
	assert.Equal(t, r3.Vec{X: x, Y: y, Z: -3}, res.Mesh.Vertices[res.Mesh.Grid.Index(1, 2)])
}

func TestBuild_Properties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	pings := randomPings(rng, 60, 12)

	res, err := Build(pings, 1.5)
	require.NoError(t, err)

	// vertex count matches populated cells and faces stay in range
	assert.Equal(t, res.HeightMap.Populated(), len(res.Mesh.Vertices))
	require.NoError(t, res.Mesh.Validate())

	// every sounding lies in the bounding box
	for _, p := range pings {
		for _, b := range p.Beams {
			assert.True(t, res.Bounds.Contains(b.X, b.Y), "beam %v outside %+v", b, res.Bounds)
			assert.GreaterOrEqual(t, b.Z, res.Bounds.MinZ)
			assert.LessOrEqual(t, b.Z, res.Bounds.MaxZ)
		}
	}

	// empty cells never take part in a face
	for _, f := range res.Mesh.Faces {
		for _, v := range f {
			cell := res.Mesh.Cells[v]
			assert.False(t, IsNoData(res.HeightMap.Values[cell]))
			assert.Positive(t, res.HeightMap.Counts[cell])
		}
	}
	for i, v := range res.HeightMap.Values {
		if res.HeightMap.Counts[i] == 0 {
			assert.True(t, IsNoData(v), "empty cell %d holds %v", i, v)
		}
	}
}

func TestBuild_OrderIndependent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 5))
	pings := randomPings(rng, 40, 25)

	for _, agg := range []Aggregation{Mean, Median, Shoalest, Deepest} {
		first, err := Build(pings, 2, WithAggregation(agg))
		require.NoError(t, err)

		shuffled := append([]survey.Ping(nil), pings...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for i := range shuffled {
			beams := append([]r3.Vec(nil), shuffled[i].Beams...)
			rng.Shuffle(len(beams), func(a, b int) { beams[a], beams[b] = beams[b], beams[a] })
			shuffled[i].Beams = beams
		}

		second, err := Build(shuffled, 2, WithAggregation(agg))
		require.NoError(t, err)

		if diff := cmp.Diff(first, second, cmpopts.EquateNaNs()); diff != "" {
			t.Errorf("%s: build differs after reordering (-first +second):\n%s", agg, diff)
		}
	}
}

func TestBuild_Aggregations(t *testing.T) {
	t.Parallel()

	pings := pingsOf(
		r3.Vec{X: 0.1, Y: 0.1, Z: -1},
		r3.Vec{X: 0.2, Y: 0.3, Z: -6},
		r3.Vec{X: 0.4, Y: 0.2, Z: -2},
	)
	tests := []struct {
		agg  Aggregation
		want float64
	}{
		{Mean, -3},
		{Median, -2},
		{Shoalest, -1},
		{Deepest, -6},
	}
	for _, tt := range tests {
		res, err := Build(pings, 1, WithAggregation(tt.agg))
		require.NoError(t, err)
		require.Equal(t, 1, res.HeightMap.Len())
		assert.InDelta(t, tt.want, res.HeightMap.At(0, 0), 1e-12, tt.agg.String())
		assert.Equal(t, 3, res.HeightMap.Counts[0])
	}
}

func TestBuild_CoincidentPoints(t *testing.T) {
	t.Parallel()

	p := r3.Vec{X: 652_000.25, Y: 6_580_000.5, Z: -40}
	res, err := Build(pingsOf(p, p, p), 0.5)
	require.NoError(t, err)

	assert.Greater(t, res.Bounds.MaxX, res.Bounds.MinX)
	assert.Greater(t, res.Bounds.MaxY, res.Bounds.MinY)
	assert.Equal(t, 1, res.HeightMap.Len())
	assert.Equal(t, -40.0, res.HeightMap.At(0, 0))
	assert.Len(t, res.Mesh.Vertices, 1)
	assert.Empty(t, res.Mesh.Faces)
}

func TestBuild_MaxCells(t *testing.T) {
	t.Parallel()

	_, err := Build(pingsOf(r3.Vec{}, r3.Vec{X: 100, Y: 100}), 0.01, WithMaxCells(1000))

	var target *InvalidParameterError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "resolution", target.Name)
}

func TestBuildFromPoints_MatchesBuild(t *testing.T) {
	t.Parallel()

	pings := gridPings(5, 2, -8)
	var points []r3.Vec
	for _, p := range pings {
		points = append(points, p.Beams...)
	}

	fromPings, err := Build(pings, 2)
	require.NoError(t, err)
	fromPoints, err := BuildFromPoints(points, 2)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(fromPings, fromPoints, cmpopts.EquateNaNs()))
}

func TestHeightMap_HeightAtAndRange(t *testing.T) {
	t.Parallel()

	hm, _, err := HeightMapFromPoints([]r3.Vec{{X: 0, Y: 0, Z: -4}, {X: 2, Y: 0, Z: -9}}, 1)
	require.NoError(t, err)

	v, ok := hm.HeightAt(0.5, 0.5)
	assert.True(t, ok)
	assert.Equal(t, -4.0, v)

	_, ok = hm.HeightAt(1.5, 0.2)
	assert.False(t, ok, "middle cell is empty")

	_, ok = hm.HeightAt(-1, 0)
	assert.False(t, ok, "outside the grid")

	lo, hi, ok := hm.Range()
	assert.True(t, ok)
	assert.Equal(t, -9.0, lo)
	assert.Equal(t, -4.0, hi)
}

func TestCellOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		offset, res float64
		want        int
	}{
		{0, 1, 0},
		{0.999, 1, 0},
		{1, 1, 1},
		{0.3, 0.1, 3}, // 0.3/0.1 is 2.9999999999999996
		{0.7, 0.1, 7},
		{-0.5, 1, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cellOf(tt.offset, tt.res), "cellOf(%v, %v)", tt.offset, tt.res)
	}
}

func TestParseAggregation(t *testing.T) {
	t.Parallel()

	a, err := ParseAggregation(" Median ")
	require.NoError(t, err)
	assert.Equal(t, Median, a)

	_, err = ParseAggregation("mode")
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}
