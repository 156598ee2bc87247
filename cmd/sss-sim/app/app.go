package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/roman-kulish/bathymetry/internal/bathy"
	"github.com/roman-kulish/bathymetry/internal/sim"
	"github.com/roman-kulish/bathymetry/internal/sonar"
	"github.com/roman-kulish/bathymetry/internal/storage"
	"github.com/roman-kulish/bathymetry/internal/survey"
)

// Names of the files written to the output directory
const (
	HeightMapFile = "height_map.png"
	WaterfallFile = "waterfall.png"
	MeshFile      = "mesh.obj"
	ManifestFile  = "scene.yaml"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	for _, path := range []string{config.MeshDB, config.SonarDB, config.NavDB, config.SoundSpeedFile} {
		if _, err := os.Stat(path); err != nil && os.IsNotExist(err) {
			return fmt.Errorf("input file '%s' does not exist: %w", path, err)
		}
	}

	logger = logger.With(slog.String("run", uuid.NewString()))
	started := time.Now()

	simConfig := sim.DefaultConfig()
	if config.SimConfigFile != "" {
		var err error
		if simConfig, err = sim.LoadConfig(config.SimConfigFile); err != nil {
			return fmt.Errorf("loading simulation config: %w", err)
		}
	}

	var cache storage.Cache = storage.NopCache{}
	if config.CachePath != "" {
		cache = storage.NewSqliteCache(config.CachePath)
	}
	defer cache.Close()

	build, err := buildMesh(ctx, cache, config, logger)
	if err != nil {
		return err
	}

	pings, err := loadSidescan(ctx, config, simConfig, logger)
	if err != nil {
		return err
	}

	svp, err := sonar.LoadSoundSpeedProfile(config.SoundSpeedFile)
	if err != nil {
		return err
	}
	logger.Debug("loaded sound speed profile",
		slog.String("name", svp.Name),
		slog.Int("samples", len(svp.Samples)),
		slog.String("meanVelocity", fmt.Sprintf("%0.2fm/s", svp.MeanVelocity())))

	scene, err := sim.NewScene(simConfig, build, pings, svp)
	if err != nil {
		return fmt.Errorf("assembling scene: %w", err)
	}

	if err = writeScene(scene, config, logger); err != nil {
		return err
	}

	logger.Info("scene ready",
		slog.String("output", config.OutputDir),
		slog.String("elapsed", time.Since(started).Round(time.Millisecond).String()))
	return nil
}

func buildMesh(ctx context.Context, cache storage.Cache, config *Config, logger *slog.Logger) (*bathy.Result, error) {
	fp, err := storage.Fingerprint(config.MeshDB)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting mesh database: %w", err)
	}

	var surveyID string
	if config.MeshSurveyID != nil {
		surveyID = strconv.FormatInt(*config.MeshSurveyID, 10)
	}
	key := storage.Key("mesh", fp, surveyID,
		strconv.FormatFloat(config.Resolution, 'g', -1, 64),
		config.Aggregation.String())

	build, hit, err := storage.GetOrComputeJSON(ctx, cache, key, func(ctx context.Context) (*bathy.Result, error) {
		pings, err := readMultibeam(ctx, config, logger)
		if err != nil {
			return nil, err
		}

		logger.Info("building mesh",
			slog.Int("pings", len(pings)),
			slog.String("soundings", humanize.Comma(int64(survey.BeamCount(pings)))),
			slog.Float64("resolution", config.Resolution),
			slog.String("aggregation", config.Aggregation.String()))

		return bathy.Build(pings, config.Resolution, bathy.WithAggregation(config.Aggregation))
	})
	if err != nil {
		return nil, fmt.Errorf("building mesh: %w", err)
	}

	hm := build.HeightMap
	logger.Info("mesh ready",
		slog.Bool("cached", hit),
		slog.Group("stats",
			slog.Int("rows", hm.Rows),
			slog.Int("cols", hm.Cols),
			slog.String("populated", humanize.Comma(int64(hm.Populated()))),
			slog.String("vertices", humanize.Comma(int64(len(build.Mesh.Vertices)))),
			slog.String("faces", humanize.Comma(int64(len(build.Mesh.Faces)))),
			slog.String("minZ", fmt.Sprintf("%0.2fm", build.Bounds.MinZ)),
			slog.String("maxZ", fmt.Sprintf("%0.2fm", build.Bounds.MaxZ)),
		))
	return build, nil
}

func readMultibeam(ctx context.Context, config *Config, logger *slog.Logger) (pings []survey.Ping, err error) {
	store := storage.NewSqliteStore(config.MeshDB)
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	sv, err := findSurvey(ctx, store, survey.KindMultibeam, config.MeshSurveyID)
	if err != nil {
		return nil, err
	}
	logger.Debug("reading multibeam survey", slog.Int64("survey", sv.ID), slog.String("source", sv.Source))

	reader, err := store.ReadPings(ctx, sv.ID)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return storage.ReadAllPings(ctx, reader)
}

func loadSidescan(ctx context.Context, config *Config, simConfig sim.Config, logger *slog.Logger) ([]survey.SidescanPing, error) {
	sonarStore := storage.NewSqliteStore(config.SonarDB)
	defer sonarStore.Close()

	sv, err := findSurvey(ctx, sonarStore, survey.KindSidescan, nil)
	if err != nil {
		return nil, err
	}
	pings, err := sonarStore.SidescanPings(ctx, sv.ID)
	if err != nil {
		return nil, fmt.Errorf("reading side-scan pings: %w", err)
	}

	navStore := storage.NewSqliteStore(config.NavDB)
	defer navStore.Close()

	nv, err := findSurvey(ctx, navStore, survey.KindNavigation, nil)
	if err != nil {
		return nil, err
	}
	entries, err := navStore.NavEntries(ctx, nv.ID)
	if err != nil {
		return nil, fmt.Errorf("reading navigation: %w", err)
	}

	matched, stats, err := sonar.MatchNavigation(pings, entries)
	if err != nil {
		return nil, fmt.Errorf("matching navigation: %w", err)
	}
	if stats.Matched == 0 {
		return nil, fmt.Errorf("none of %d side-scan pings fall within the navigation track", len(pings))
	}

	logger.Info("matched side-scan pings to navigation",
		slog.Int("matched", stats.Matched),
		slog.Int("dropped", stats.Dropped),
		slog.Int("navEntries", len(entries)))

	return sonar.CorrectSensorOffset(matched, simConfig.SensorOffset.Vec()), nil
}

// findSurvey returns the survey with the given ID, or the first survey of
// the given kind when id is nil.
func findSurvey(ctx context.Context, store storage.Store, kind survey.Kind, id *int64) (*survey.Survey, error) {
	if id != nil {
		sv, err := store.Survey(ctx, *id)
		if err != nil {
			return nil, err
		}
		if sv.Kind != kind {
			return nil, fmt.Errorf("survey %d holds %s data, %s expected: %w", sv.ID, sv.Kind, kind, storage.ErrKindMismatch)
		}
		return sv, nil
	}

	surveys, err := store.Surveys(ctx)
	if err != nil {
		return nil, err
	}
	for _, sv := range surveys {
		if sv.Kind == kind {
			return sv, nil
		}
	}
	return nil, fmt.Errorf("no %s survey found: %w", kind, storage.ErrSurveyNotFound)
}

func writeScene(scene *sim.Scene, config *Config, logger *slog.Logger) error {
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	files := map[string]string{
		"heightMap": HeightMapFile,
		"waterfall": WaterfallFile,
		"mesh":      MeshFile,
	}

	outputs := []struct {
		name string
		fn   func(path string) error
	}{
		{HeightMapFile, func(path string) error {
			return writeHeightMap(path, scene, config)
		}},
		{WaterfallFile, func(path string) error {
			return writeWaterfall(path, scene)
		}},
		{MeshFile, func(path string) error {
			return writeFile(path, func(f *os.File) error {
				return scene.Mesh.WriteOBJ(f, scene.Bounds.RefZ())
			})
		}},
		{ManifestFile, func(path string) error {
			return writeFile(path, func(f *os.File) error {
				return scene.Manifest(files).Write(f)
			})
		}},
	}

	for _, out := range outputs {
		path := filepath.Join(config.OutputDir, out.name)
		if err := out.fn(path); err != nil {
			return fmt.Errorf("writing %s: %w", out.name, err)
		}

		attrs := []any{slog.String("path", path)}
		if st, err := os.Stat(path); err == nil {
			attrs = append(attrs, slog.String("size", humanize.Bytes(uint64(st.Size()))))
		}
		logger.Info("wrote "+out.name, attrs...)
	}
	return nil
}
