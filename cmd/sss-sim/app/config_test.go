package app

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/bathymetry/internal/bathy"
	"github.com/roman-kulish/bathymetry/internal/render"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		c, err := ParseArgs("sss-sim", []string{"mesh.db", "sonar.db", "nav.db", "svp.yaml"}, io.Discard)
		require.NoError(t, err)

		assert.Equal(t, "mesh.db", c.MeshDB)
		assert.Equal(t, "sonar.db", c.SonarDB)
		assert.Equal(t, "nav.db", c.NavDB)
		assert.Equal(t, "svp.yaml", c.SoundSpeedFile)
		assert.Equal(t, defaultResolution, c.Resolution)
		assert.Equal(t, bathy.Mean, c.Aggregation)
		assert.Equal(t, render.JetTheme, c.Theme)
		assert.Equal(t, ".", c.OutputDir)
		assert.Nil(t, c.MeshSurveyID)
		assert.Empty(t, c.CachePath)
	})

	t.Run("flags", func(t *testing.T) {
		t.Parallel()

		c, err := ParseArgs("sss-sim", []string{
			"-c", "sim.yaml", "-cache", "cache.db", "-o", "out", "-r", "0.25",
			"-agg", "median", "-theme", "marine", "-survey", "3", "-verbose",
			"mesh.db", "sonar.db", "nav.db", "svp.yaml",
		}, io.Discard)
		require.NoError(t, err)

		assert.Equal(t, "sim.yaml", c.SimConfigFile)
		assert.Equal(t, "cache.db", c.CachePath)
		assert.Equal(t, "out", c.OutputDir)
		assert.Equal(t, 0.25, c.Resolution)
		assert.Equal(t, bathy.Median, c.Aggregation)
		assert.Equal(t, render.MarineTheme, c.Theme)
		require.NotNil(t, c.MeshSurveyID)
		assert.Equal(t, int64(3), *c.MeshSurveyID)
		assert.True(t, c.Verbose)
	})

	errorTests := []struct {
		name string
		args []string
		want string
	}{
		{"missing positional", []string{"mesh.db", "sonar.db"}, "expected 4 positional arguments, 2 given"},
		{"zero resolution", []string{"-r", "0", "a", "b", "c", "d"}, "resolution must be a positive number"},
		{"negative resolution", []string{"-r", "-1", "a", "b", "c", "d"}, "resolution must be a positive number"},
		{"bad survey", []string{"-survey", "0", "a", "b", "c", "d"}, "survey id must be positive"},
		{"bad aggregation", []string{"-agg", "mode", "a", "b", "c", "d"}, "unknown aggregation"},
		{"bad theme", []string{"-theme", "viridis", "a", "b", "c", "d"}, "unknown color theme"},
		{"unknown flag", []string{"-x", "a", "b", "c", "d"}, "flag provided but not defined"},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseArgs("sss-sim", tt.args, io.Discard)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
