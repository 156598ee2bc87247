package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/roman-kulish/bathymetry/internal/bathy"
)

const (
	dpi            = 96.0
	tickMarkHeight = 5
	pixelsPerLabel = 120.0
)

type annotatorConfig struct {
	FontSize float64
	Borders  BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, area image.Rectangle, hm *bathy.HeightMap) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	frame(img, area, color.Black)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, image.Rectangle, *bathy.HeightMap) error
	}{
		{"drawing easting scale", a.drawEastingScale},
		{"drawing northing scale", a.drawNorthingScale},
		{"drawing info bar", a.drawInfoBar},
	}
	for _, op := range ops {
		if err := op.fn(img, area, hm); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}
	return nil
}

func (a *annotator) drawEastingScale(img *image.RGBA, area image.Rectangle, hm *bathy.HeightMap) error {
	extent := hm.Extent()
	step := niceStep(extent.Width(), area.Dx())
	pxPerMetre := float64(area.Dx()) / extent.Width()

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := a.config.Borders.Top - tickMarkHeight - fontHeight/2

	for d := 0.0; d <= extent.Width(); d += step {
		x := area.Min.X + int(d*pxPerMetre)

		for y := area.Min.Y - tickMarkHeight; y < area.Min.Y; y++ {
			img.Set(x, y, color.Black)
		}

		label := formatDistance(d)
		width := font.MeasureString(a.fontFace, label)
		if _, err := a.context.DrawString(label, freetype.Pt(x-width.Round()/2, textY)); err != nil {
			return fmt.Errorf("drawing easting label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawNorthingScale(img *image.RGBA, area image.Rectangle, hm *bathy.HeightMap) error {
	extent := hm.Extent()
	step := niceStep(extent.Height(), area.Dy())
	pxPerMetre := float64(area.Dy()) / extent.Height()

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for d := 0.0; d <= extent.Height(); d += step {
		y := area.Max.Y - int(d*pxPerMetre)

		for x := area.Min.X - tickMarkHeight; x < area.Min.X; x++ {
			img.Set(x, y, color.Black)
		}

		label := formatDistance(d)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(area.Min.X-tickMarkHeight-3-width.Round(), y+fontHeight/2-metrics.Descent.Round())
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing northing label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, area image.Rectangle, hm *bathy.HeightMap) error {
	lo, hi, _ := hm.Range()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Origin: %.2f E %.2f N", hm.MinX, hm.MinY))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Height: %.2f to %.2f m", lo, hi))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Cells: %s of %s", humanize.Comma(int64(hm.Populated())), humanize.Comma(int64(hm.Len()))))
	sb.WriteString("; ")
	sb.WriteString("1 cell = " + humanize.SIWithDigits(hm.Resolution, 2, "m"))

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.Borders.Bottom-fontHeight)/2 - metrics.Descent.Round()

	if _, err := a.context.DrawString(sb.String(), freetype.Pt(area.Min.X, textY)); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

// niceStep returns a 1, 2 or 5 times power of ten step giving roughly one
// label per pixelsPerLabel pixels.
func niceStep(extent float64, pixels int) float64 {
	labels := max(float64(pixels)/pixelsPerLabel, 1)
	rough := extent / labels
	if rough <= 0 || math.IsNaN(rough) || math.IsInf(rough, 0) {
		return math.Max(extent, 1)
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(rough)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * magnitude; step >= rough {
			return step
		}
	}
	return 10 * magnitude
}

func formatDistance(metres float64) string {
	if metres == 0 {
		return "0 m"
	}
	return humanize.SIWithDigits(metres, 1, "m")
}
