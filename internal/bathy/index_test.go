package bathy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMeshIndex_FacesIntersecting(t *testing.T) {
	t.Parallel()

	res, err := Build(gridPings(5, 1, -10), 1)
	require.NoError(t, err)

	idx := NewMeshIndex(res.Mesh)
	assert.Equal(t, len(res.Mesh.Faces), idx.Size())

	all := idx.FacesIntersecting(res.Bounds.Expand(1))
	assert.Len(t, all, 32)

	// strictly inside the quad spanning [0,1]x[0,1]
	near := idx.FacesIntersecting(BoundingBox{MinX: 0.2, MaxX: 0.4, MinY: 0.2, MaxY: 0.4})
	assert.Equal(t, []int{0, 1}, near)

	none := idx.FacesIntersecting(BoundingBox{MinX: 10, MaxX: 11, MinY: 10, MaxY: 11})
	assert.Empty(t, none)
}

func TestMeshIndex_Crop(t *testing.T) {
	t.Parallel()

	res, err := Build(gridPings(6, 1, -10), 1)
	require.NoError(t, err)

	cropped := NewMeshIndex(res.Mesh).Crop(r3.Vec{X: 2.5, Y: 2.5}, 0.25)
	require.NoError(t, cropped.Validate())
	assert.Len(t, cropped.Faces, 2)
	assert.Len(t, cropped.Vertices, 4)
	for _, v := range cropped.Vertices {
		assert.True(t, v.X >= 2 && v.X <= 3 && v.Y >= 2 && v.Y <= 3, "vertex %v outside the cropped quad", v)
	}
}
