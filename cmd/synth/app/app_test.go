package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/bathymetry/internal/sonar"
	"github.com/roman-kulish/bathymetry/internal/storage"
	"github.com/roman-kulish/bathymetry/internal/survey"
)

func testConfig(t *testing.T) *Config {
	t.Helper()

	c := NewConfig()
	c.Output.Directory = filepath.Join(t.TempDir(), "data")
	c.Survey.Track.Length = 20
	c.Survey.Track.Lines = 1
	c.Survey.Sidescan.Samples = 20
	return c
}

func TestRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := testConfig(t)
	require.NoError(t, Run(ctx, c, slog.New(slog.DiscardHandler)))

	tests := []struct {
		file string
		kind survey.Kind
	}{
		{c.Output.Multibeam, survey.KindMultibeam},
		{c.Output.Sidescan, survey.KindSidescan},
		{c.Output.Navigation, survey.KindNavigation},
	}
	for _, tt := range tests {
		store := storage.NewSqliteStore(filepath.Join(c.Output.Directory, tt.file))
		surveys, err := store.Surveys(ctx)
		require.NoError(t, err)
		require.Len(t, surveys, 1)
		assert.Equal(t, tt.kind, surveys[0].Kind)
		assert.Contains(t, surveys[0].Source, "synth/")
		assert.NotNil(t, surveys[0].Config)
		require.NoError(t, store.Close())
	}

	svp, err := sonar.LoadSoundSpeedProfile(filepath.Join(c.Output.Directory, c.Output.SoundSpeed))
	require.NoError(t, err)
	assert.Equal(t, "synthetic", svp.Name)
}

func TestRun_Overwrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := testConfig(t)
	require.NoError(t, Run(ctx, c, slog.New(slog.DiscardHandler)))

	err := Run(ctx, c, slog.New(slog.DiscardHandler))
	assert.ErrorContains(t, err, "already exists")

	c.Output.Overwrite = true
	require.NoError(t, Run(ctx, c, slog.New(slog.DiscardHandler)))

	store := storage.NewSqliteStore(filepath.Join(c.Output.Directory, c.Output.Multibeam))
	defer store.Close()
	surveys, err := store.Surveys(ctx)
	require.NoError(t, err)
	assert.Len(t, surveys, 1)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "synth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
settings:
  logLevel: debug
survey:
  seed: 7
  track:
    origin: [100, 200, 0]
    heading: 90deg
    lines: 2
  multibeam:
    pingInterval: 250ms
output:
  directory: out
`), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", c.Settings.LogLevel)
	assert.Equal(t, uint64(7), c.Survey.Seed)
	assert.Equal(t, 100.0, c.Survey.Track.Origin.X)
	assert.Equal(t, 200.0, c.Survey.Track.Origin.Y)
	assert.Equal(t, 90.0, float64(c.Survey.Track.Heading))
	assert.Equal(t, 2, c.Survey.Track.Lines)
	assert.Equal(t, "250ms", c.Survey.Multibeam.PingInterval.String())
	assert.Equal(t, "out", c.Output.Directory)

	// Untouched keys keep their defaults.
	assert.Equal(t, NewConfig().Survey.Seabed, c.Survey.Seabed)
	assert.Equal(t, "mbes.sqlite", c.Output.Multibeam)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "survey:\n  sead: 1\n", "field sead not found"},
		{"duplicate output", "output:\n  sidescan: mbes.sqlite\n", "used twice"},
		{"invalid survey", "survey:\n  track:\n    lines: 0\n", "at least one line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "synth.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := LoadConfig(path)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
