package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/roman-kulish/bathymetry/internal/bathy"
)

const (
	fontSize = 10.0

	// Default border sizes in pixels
	defaultTopBorder    = 30
	defaultLeftBorder   = 90
	defaultBottomBorder = 40
	defaultRightBorder  = 30

	// Target size of the longer side of the map area when CellSize is not set
	targetMapSize = 800
	maxCellSize   = 16
)

// BorderConfig defines the sizes of white space around the map
type BorderConfig struct {
	Top    int // Space for easting scale
	Left   int // Space for northing scale
	Bottom int // Space for information bar
	Right  int // Right padding
}

// RenderConfig holds all configuration options for height map visualization
type RenderConfig struct {
	ColorTheme    ColorTheme // Color scheme for heights
	CellSize      int        // Pixels per grid cell side (0 to fit the map in ~800px)
	FontSize      float64    // Font size in points
	NoAnnotations bool       // Render the map only, without borders, scales or info bar

	BorderConfig BorderConfig
}

// HeightMapRenderer draws height maps as images, north up.
type HeightMapRenderer struct {
	config RenderConfig
}

// NewHeightMapRenderer creates a new renderer with the given configuration
func NewHeightMapRenderer(config RenderConfig) (*HeightMapRenderer, error) {
	if config.ColorTheme == "" {
		config.ColorTheme = JetTheme
	}
	if _, err := ParseColorTheme(string(config.ColorTheme)); err != nil {
		return nil, err
	}
	if config.CellSize < 0 {
		return nil, fmt.Errorf("cell size must not be negative: %d", config.CellSize)
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}

	if config.NoAnnotations {
		config.BorderConfig = BorderConfig{}
	} else {
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultTopBorder
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultLeftBorder
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultBottomBorder
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultRightBorder
		}
	}

	return &HeightMapRenderer{config: config}, nil
}

// cellSize returns the side of one grid cell in pixels.
func (r *HeightMapRenderer) cellSize(g bathy.Grid) int {
	if r.config.CellSize > 0 {
		return r.config.CellSize
	}
	size := int(math.Ceil(targetMapSize / float64(max(g.Rows, g.Cols))))
	return min(max(size, 1), maxCellSize)
}

// Render creates an image of the height map. Colors span the populated
// height range; empty cells are drawn in NoDataColor.
func (r *HeightMapRenderer) Render(hm *bathy.HeightMap) (*image.RGBA, error) {
	if hm == nil || hm.Len() == 0 {
		return nil, errors.New("empty height map")
	}
	lo, hi, ok := hm.Range()
	if !ok {
		return nil, errors.New("height map has no populated cells")
	}

	cell := r.cellSize(hm.Grid)
	borders := r.config.BorderConfig

	mapArea := image.Rect(
		borders.Left,
		borders.Top,
		borders.Left+hm.Cols*cell,
		borders.Top+hm.Rows*cell,
	)
	img := image.NewRGBA(image.Rect(0, 0, mapArea.Max.X+borders.Right, mapArea.Max.Y+borders.Bottom))

	// Fill with white background
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	cm := NewColorMapper(r.config.ColorTheme, lo, hi)
	r.renderMap(img, mapArea, cell, hm, cm)

	if r.config.NoAnnotations {
		return img, nil
	}

	ann, err := newAnnotator(annotatorConfig{
		FontSize: r.config.FontSize,
		Borders:  borders,
	})
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	if err = ann.annotate(img, mapArea, hm); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}
	return img, nil
}

// renderMap fills one cell-sized square per height. Row 0 of the height
// map is the southernmost row and lands at the bottom of the area.
func (r *HeightMapRenderer) renderMap(img *image.RGBA, area image.Rectangle, cell int, hm *bathy.HeightMap, cm *ColorMapper) {
	for row := 0; row < hm.Rows; row++ {
		y := area.Max.Y - (row+1)*cell
		for col := 0; col < hm.Cols; col++ {
			x := area.Min.X + col*cell
			c := cm.Color(hm.At(row, col))
			draw.Draw(img, image.Rect(x, y, x+cell, y+cell), &image.Uniform{C: c}, image.Point{}, draw.Src)
		}
	}
}

// frame draws a one pixel outline just outside area.
func frame(img *image.RGBA, area image.Rectangle, c color.Color) {
	for x := area.Min.X - 1; x <= area.Max.X; x++ {
		img.Set(x, area.Min.Y-1, c)
		img.Set(x, area.Max.Y, c)
	}
	for y := area.Min.Y - 1; y <= area.Max.Y; y++ {
		img.Set(area.Min.X-1, y, c)
		img.Set(area.Max.X, y, c)
	}
}
