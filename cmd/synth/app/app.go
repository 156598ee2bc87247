package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/bathymetry/internal/storage"
	"github.com/roman-kulish/bathymetry/internal/survey"
	"github.com/roman-kulish/bathymetry/internal/synth"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	out := config.Output
	if err := os.MkdirAll(out.Directory, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	paths := []string{out.Multibeam, out.Sidescan, out.Navigation, out.SoundSpeed}
	for i, name := range paths {
		paths[i] = filepath.Join(out.Directory, name)
		if err := prepareOutput(paths[i], out.Overwrite); err != nil {
			return err
		}
	}

	logger.Info("generating survey",
		slog.Int("lines", config.Survey.Track.Lines),
		slog.String("duration", config.Survey.Track.Duration().String()),
		slog.Uint64("seed", config.Survey.Seed))

	s, err := synth.Generate(config.Survey)
	if err != nil {
		return fmt.Errorf("generating survey: %w", err)
	}

	source := "synth/" + uuid.NewString()
	start := config.Survey.Track.Start

	writers := []struct {
		kind  survey.Kind
		count int
		fn    func(ctx context.Context, store storage.Store, id int64) error
	}{
		{survey.KindMultibeam, len(s.Multibeam), func(ctx context.Context, store storage.Store, id int64) error {
			return store.StorePings(ctx, id, s.Multibeam)
		}},
		{survey.KindSidescan, len(s.Sidescan), func(ctx context.Context, store storage.Store, id int64) error {
			return store.StoreSidescanPings(ctx, id, s.Sidescan)
		}},
		{survey.KindNavigation, len(s.Navigation), func(ctx context.Context, store storage.Store, id int64) error {
			return store.StoreNavEntries(ctx, id, s.Navigation)
		}},
	}

	for i, w := range writers {
		if err = writeSurvey(ctx, paths[i], w.kind, source, config, w.fn); err != nil {
			return fmt.Errorf("writing %s survey: %w", w.kind, err)
		}
		logger.Info("wrote survey",
			slog.String("kind", string(w.kind)),
			slog.String("path", paths[i]),
			slog.String("records", humanize.Comma(int64(w.count))))
	}

	if err = writeSoundSpeed(paths[3], &s.SoundSpeed); err != nil {
		return fmt.Errorf("writing sound speed profile: %w", err)
	}
	logger.Info("wrote sound speed profile",
		slog.String("path", paths[3]),
		slog.Int("samples", len(s.SoundSpeed.Samples)))

	logger.Debug("survey source", slog.String("source", source), slog.Time("start", start))
	return nil
}

// prepareOutput fails when path exists unless overwrite is set, in which
// case the file is removed.
func prepareOutput(path string, overwrite bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !overwrite {
		return fmt.Errorf("output file '%s' already exists", path)
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return nil
}

func writeSurvey(ctx context.Context, path string, kind survey.Kind, source string, config *Config,
	write func(context.Context, storage.Store, int64) error) (err error) {
	store := storage.NewSqliteStore(path)
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	id, err := store.CreateSurvey(ctx, kind, source, config.Survey.Track.Start, config.Survey)
	if err != nil {
		return err
	}
	return write(ctx, store, id)
}

func writeSoundSpeed(path string, svp any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err = enc.Encode(svp); err != nil {
		return err
	}
	return enc.Close()
}
