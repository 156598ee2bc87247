package sonar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/bathymetry/internal/survey"
)

func TestCorrectSensorOffset(t *testing.T) {
	offset := r3.Vec{X: 2, Y: -1.5, Z: 0}
	pings := []survey.SidescanPing{
		{Position: r3.Vec{X: 100, Y: 200, Z: -5}, Heading: 0},
		{Position: r3.Vec{X: 100, Y: 200, Z: -5}, Heading: math.Pi / 2},
		{Position: r3.Vec{X: 100, Y: 200, Z: -5}, Heading: math.Pi},
	}
	want := []r3.Vec{
		{X: 102, Y: 198.5, Z: -5},
		{X: 101.5, Y: 202, Z: -5},
		{X: 98, Y: 201.5, Z: -5},
	}

	got := CorrectSensorOffset(pings, offset)
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.InDelta(t, w.X, got[i].Position.X, 1e-9, "ping %d", i)
		assert.InDelta(t, w.Y, got[i].Position.Y, 1e-9, "ping %d", i)
		assert.InDelta(t, w.Z, got[i].Position.Z, 1e-9, "ping %d", i)
	}

	// input is left untouched
	assert.Equal(t, r3.Vec{X: 100, Y: 200, Z: -5}, pings[1].Position)
}
