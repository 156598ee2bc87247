package sim

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())

	assert.False(t, c.RayTracing)
	assert.False(t, c.WaterfallMode)
	assert.InDelta(t, 5*math.Pi/180, c.SidescanYaw.Radians(), 1e-15)
	assert.Equal(t, Vec3{X: 2, Y: -1.5}, c.SensorOffset)
	assert.Equal(t, 30.0, c.TracingMapSize)
	assert.Equal(t, 1.0, c.IntensityMultiplier)
}

func TestLoadConfig(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, `
rayTracing: true
sidescanYaw: 7.5deg
sensorOffset: [1, 0.5, -0.25]
intensityMultiplier: 2
`))
	require.NoError(t, err)

	assert.True(t, c.RayTracing)
	assert.False(t, c.WaterfallMode)
	assert.Equal(t, Degrees(7.5), c.SidescanYaw)
	assert.Equal(t, Vec3{X: 1, Y: 0.5, Z: -0.25}, c.SensorOffset)
	assert.Equal(t, DefaultTracingMapSize, c.TracingMapSize, "missing keys keep defaults")
	assert.Equal(t, 2.0, c.IntensityMultiplier)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"short offset":   "sensorOffset: [1, 2]",
		"scalar offset":  "sensorOffset: 3",
		"bad yaw":        "sidescanYaw: left",
		"yaw range":      "sidescanYaw: 270",
		"zero map size":  "tracingMapSize: 0",
		"negative gain":  "intensityMultiplier: -1",
		"malformed yaml": "rayTracing: [",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	want := DefaultConfig()
	want.WaterfallMode = true
	want.SidescanYaw = -3

	p, err := yaml.Marshal(want)
	require.NoError(t, err)

	var got Config
	require.NoError(t, yaml.Unmarshal(p, &got))
	assert.Equal(t, want, got)
}
