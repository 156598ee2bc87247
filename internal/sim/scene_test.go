package sim

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/bathymetry/internal/bathy"
	"github.com/roman-kulish/bathymetry/internal/sonar"
	"github.com/roman-kulish/bathymetry/internal/survey"
)

var t0 = time.Date(2019, 8, 14, 9, 30, 0, 0, time.UTC)

func testBuild(t *testing.T) *bathy.Result {
	t.Helper()

	var points []r3.Vec
	for row := 0; row <= 10; row++ {
		for col := 0; col <= 10; col++ {
			points = append(points, r3.Vec{X: float64(col), Y: float64(row), Z: -20 - float64(col)/10})
		}
	}
	res, err := bathy.BuildFromPoints(points, 1)
	require.NoError(t, err)
	return res
}

func testSVP() *sonar.SoundSpeedProfile {
	return &sonar.SoundSpeedProfile{
		Name: "cast-1",
		Samples: []sonar.SoundSpeed{
			{Depth: 0, Velocity: 1500},
			{Depth: 20, Velocity: 1480},
		},
	}
}

func testPings() []survey.SidescanPing {
	return []survey.SidescanPing{
		{Timestamp: t0, Position: r3.Vec{X: 5, Y: 5, Z: -2}},
		{Timestamp: t0.Add(time.Second), Position: r3.Vec{X: 5.5, Y: 5, Z: -2}},
		{Timestamp: t0.Add(2 * time.Second), Position: r3.Vec{X: 50, Y: 5, Z: -2}},
	}
}

func TestNewScene_Validation(t *testing.T) {
	build := testBuild(t)

	_, err := NewScene(DefaultConfig(), nil, testPings(), testSVP())
	assert.Error(t, err)

	_, err = NewScene(DefaultConfig(), build, nil, testSVP())
	assert.Error(t, err)

	_, err = NewScene(DefaultConfig(), build, testPings(), nil)
	assert.Error(t, err)

	bad := DefaultConfig()
	bad.TracingMapSize = -1
	_, err = NewScene(bad, build, testPings(), testSVP())
	assert.Error(t, err)
}

func TestScene_LocalMesh(t *testing.T) {
	config := DefaultConfig()
	config.TracingMapSize = 2

	scene, err := NewScene(config, testBuild(t), testPings(), testSVP())
	require.NoError(t, err)

	local := scene.LocalMesh(0)
	require.NoError(t, local.Validate())
	assert.NotEmpty(t, local.Faces)
	assert.Less(t, len(local.Faces), len(scene.Mesh.Faces))
	for _, v := range local.Vertices {
		assert.True(t, v.X >= 3 && v.X <= 7 && v.Y >= 3 && v.Y <= 7, "vertex %v far from the ping", v)
	}

	assert.Empty(t, scene.LocalMesh(2).Faces, "ping outside the survey area")
}

func TestScene_Manifest(t *testing.T) {
	scene, err := NewScene(DefaultConfig(), testBuild(t), testPings(), testSVP())
	require.NoError(t, err)

	m := scene.Manifest(map[string]string{"heightMap": "height_map.png"})
	assert.Equal(t, 11, m.Grid.Rows)
	assert.Equal(t, 11, m.Grid.Cols)
	assert.Equal(t, 121, m.Grid.Populated)
	assert.Equal(t, 121, m.Mesh.Vertices)
	assert.Equal(t, 200, m.Mesh.Faces)
	assert.Equal(t, 3, m.Pings.Count)
	assert.Equal(t, 2, m.Pings.OverMesh)
	assert.InDelta(t, -21, m.Bounds.RefZ, 1e-12)
	assert.Equal(t, 1490.0, m.SoundSpeed.MeanVelocity)

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	var decoded Manifest
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, m.Config, decoded.Config)
	assert.Equal(t, m.Grid, decoded.Grid)
	assert.Equal(t, m.Mesh, decoded.Mesh)
	assert.True(t, m.Pings.Last.Equal(decoded.Pings.Last))
	assert.Equal(t, "height_map.png", decoded.Files["heightMap"])
}
