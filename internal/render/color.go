package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for height visualization.
type ColorTheme string

const (
	JetTheme       ColorTheme = "jet"       // Dark blue through cyan and yellow to dark red
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorMapSize = 256 // Default number of colors in the map
)

// NoDataColor is used for cells without soundings.
var NoDataColor = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}

var themes = map[ColorTheme]func(float64) color.Color{
	JetTheme:       jet,
	ClassicTheme:   classic,
	GrayscaleTheme: grayscale,
	ThermalTheme:   thermal,
	MarineTheme:    marine,
}

// ParseColorTheme validates a theme name.
func ParseColorTheme(s string) (ColorTheme, error) {
	theme := ColorTheme(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := themes[theme]; !ok {
		return "", fmt.Errorf("unknown color theme: %q", s)
	}
	return theme, nil
}

// ColorMapper maps heights onto a pre-computed color ramp.
type ColorMapper struct {
	colorMap []color.Color // Pre-computed colors
	theme    ColorTheme
	min      float64
	span     float64
}

// NewColorMapper creates a mapper for heights in [lo, hi]. Unknown themes
// fall back to JetTheme.
func NewColorMapper(theme ColorTheme, lo, hi float64) *ColorMapper {
	fn, ok := themes[theme]
	if !ok {
		theme, fn = JetTheme, jet
	}

	cm := &ColorMapper{
		colorMap: make([]color.Color, DefaultColorMapSize),
		theme:    theme,
		min:      lo,
		span:     hi - lo,
	}
	for i := range cm.colorMap {
		cm.colorMap[i] = fn(float64(i) / float64(DefaultColorMapSize-1))
	}
	return cm
}

// Color returns the color of height v. NaN maps to NoDataColor; heights
// outside the mapper's range are clamped.
func (cm *ColorMapper) Color(v float64) color.Color {
	if math.IsNaN(v) {
		return NoDataColor
	}

	var normalized float64
	if cm.span > 0 {
		normalized = (v - cm.min) / cm.span
	}
	index := int(math.Round(normalized * float64(len(cm.colorMap)-1)))
	index = min(max(index, 0), len(cm.colorMap)-1)
	return cm.colorMap[index]
}

// Theme returns the color theme in use.
func (cm *ColorMapper) Theme() ColorTheme {
	return cm.theme
}

func rgb(r, g, b float64) color.RGBA {
	return color.RGBA{R: uint8(255 * r), G: uint8(255 * g), B: uint8(255 * b), A: 0xff}
}

func hsv(h, s, v float64) color.Color {
	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func jet(x float64) color.Color {
	const red = 0.8

	x = min(max(x, 0), 1)
	switch {
	case x < 1./8:
		return rgb(0, 0, 0.5+x/(1./8)*0.5)
	case x < 3./8:
		return rgb(0, (x-1./8)/(2./8), 1)
	case x < 5./8:
		t := (x - 3./8) / (2. / 8)
		return rgb(red*t, 1, 1-t)
	case x < 7./8:
		return rgb(red, 1-(x-5./8)/(2./8), 0)
	default:
		return rgb(red-(x-7./8)/(1./8)*0.5, 0, 0)
	}
}

func classic(x float64) color.Color {
	return hsv(240-(x*240), 0.9+(x*0.1), math.Pow(x, 0.7))
}

func grayscale(x float64) color.Color {
	v := uint8(math.Pow(x, 0.7) * 255)
	return color.RGBA{R: v, G: v, B: v, A: 0xff}
}

func thermal(x float64) color.Color {
	switch {
	case x < 0.33:
		return color.RGBA{R: uint8(x * 3 * 255), A: 0xff}
	case x < 0.66:
		return color.RGBA{R: 255, G: uint8((x - 0.33) * 3 * 255), A: 0xff}
	default:
		return color.RGBA{R: 255, G: 255, B: uint8(min((x-0.66)*3, 1) * 255), A: 0xff}
	}
}

func marine(x float64) color.Color {
	return hsv(240-(x*60), 1.0-(x*0.8), 0.3+(math.Pow(x, 0.6)*0.7))
}
