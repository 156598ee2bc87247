package app

import (
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/roman-kulish/bathymetry/internal/render"
	"github.com/roman-kulish/bathymetry/internal/sim"
	"github.com/roman-kulish/bathymetry/internal/sonar"
)

// writeFile creates path and hands it to write, closing it afterwards.
func writeFile(path string, write func(*os.File) error) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	return write(out)
}

func writeHeightMap(path string, scene *sim.Scene, config *Config) error {
	renderer, err := render.NewHeightMapRenderer(render.RenderConfig{
		ColorTheme:    config.Theme,
		NoAnnotations: config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating height map renderer: %w", err)
	}

	img, err := renderer.Render(scene.HeightMap)
	if err != nil {
		return fmt.Errorf("rendering height map: %w", err)
	}

	return writeFile(path, func(f *os.File) error {
		return png.Encode(f, img)
	})
}

func writeWaterfall(path string, scene *sim.Scene) error {
	img, err := sonar.Waterfall(scene.Pings)
	if err != nil {
		return fmt.Errorf("rendering waterfall: %w", err)
	}

	return writeFile(path, func(f *os.File) error {
		return png.Encode(f, img)
	})
}
