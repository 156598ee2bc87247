package sonar

import (
	"errors"
	"image"
	"image/color"

	"github.com/roman-kulish/bathymetry/internal/survey"
)

// background fills pixels not covered by a ping's samples.
var background = color.Gray{Y: 255}

// Waterfall renders side-scan pings as a greyscale image with one row per
// ping, the first ping on top. The port channel is mirrored to the left of
// nadir and the starboard channel runs to the right, so the samples nearest
// to the sensor meet in the middle column pair.
func Waterfall(pings []survey.SidescanPing) (*image.Gray, error) {
	if len(pings) == 0 {
		return nil, errors.New("no pings to render")
	}

	var portWidth, stbdWidth int
	for _, p := range pings {
		portWidth = max(portWidth, len(p.Port.Intensities))
		stbdWidth = max(stbdWidth, len(p.Starboard.Intensities))
	}
	if portWidth+stbdWidth == 0 {
		return nil, errors.New("pings carry no samples")
	}

	img := image.NewGray(image.Rect(0, 0, portWidth+stbdWidth, len(pings)))
	for i := range img.Pix {
		img.Pix[i] = background.Y
	}

	for row, p := range pings {
		for j, v := range p.Port.Intensities {
			img.SetGray(portWidth-1-j, row, color.Gray{Y: IntensityToGray(v)})
		}
		for j, v := range p.Starboard.Intensities {
			img.SetGray(portWidth+j, row, color.Gray{Y: IntensityToGray(v)})
		}
	}
	return img, nil
}

// IntensityToGray maps a signed 16 bit return onto 0-255.
func IntensityToGray(v int16) uint8 {
	g := 255 * (float64(v) + 32767) / (2 * 32767)
	return uint8(min(max(g, 0), 255))
}
