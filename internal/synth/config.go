// Package synth generates synthetic surveys over an analytic seabed: a
// multibeam bathymetry run, a side-scan run, the navigation track both were
// recorded on and a sound speed profile.
package synth

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/roman-kulish/bathymetry/internal/sim"
)

// Config describes a synthetic survey.
type Config struct {
	Seed       uint64           `yaml:"seed"`
	Seabed     SeabedConfig     `yaml:"seabed"`
	Track      TrackConfig      `yaml:"track"`
	Multibeam  MultibeamConfig  `yaml:"multibeam"`
	Sidescan   SidescanConfig   `yaml:"sidescan"`
	Navigation NavigationConfig `yaml:"navigation"`
	SoundSpeed SoundSpeedConfig `yaml:"soundSpeed"`
}

// SeabedConfig shapes the seabed: a plane sloping along easting with sand
// waves on top.
type SeabedConfig struct {
	Depth      float64 `yaml:"depth"`      // Mean depth at the origin, positive down
	Slope      float64 `yaml:"slope"`      // Rise per meter along easting
	Amplitude  float64 `yaml:"amplitude"`  // Sand wave amplitude
	Wavelength float64 `yaml:"wavelength"` // Sand wave length, 0 for a flat seabed
}

// TrackConfig lays out a lawnmower pattern of parallel survey lines.
type TrackConfig struct {
	Start       time.Time   `yaml:"start"`
	Origin      sim.Vec3    `yaml:"origin,flow"` // Start of the first line, z is the vessel height
	Heading     sim.Degrees `yaml:"heading"`     // Direction of the first line, counter-clockwise from easting
	Speed       float64     `yaml:"speed"`       // Meters per second
	Length      float64     `yaml:"length"`      // Line length in meters
	Lines       int         `yaml:"lines"`
	LineSpacing float64     `yaml:"lineSpacing"` // Distance between lines, next line to port
}

type MultibeamConfig struct {
	Beams        int           `yaml:"beams"`
	SwathWidth   float64       `yaml:"swathWidth"` // Across track coverage in meters
	PingInterval time.Duration `yaml:"pingInterval"`
	Noise        float64       `yaml:"noise"` // Standard deviation of sounding heights
}

type SidescanConfig struct {
	Samples      int           `yaml:"samples"`    // Samples per channel
	SlantRange   float64       `yaml:"slantRange"` // Meters
	Altitude     float64       `yaml:"altitude"`   // Towfish height above the seabed
	PingInterval time.Duration `yaml:"pingInterval"`
	Noise        float64       `yaml:"noise"` // Intensity noise as a fraction of full scale
}

type NavigationConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type SoundSpeedConfig struct {
	Surface  float64 `yaml:"surface"`  // Velocity at the surface, m/s
	Gradient float64 `yaml:"gradient"` // Change in velocity per meter of depth
	Step     float64 `yaml:"step"`     // Depth between samples
}

// DefaultConfig returns a small survey of four 200m lines over 30m of water.
func DefaultConfig() Config {
	return Config{
		Seed: 1,
		Seabed: SeabedConfig{
			Depth:      30,
			Slope:      0.02,
			Amplitude:  1.5,
			Wavelength: 40,
		},
		Track: TrackConfig{
			Start:       time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			Heading:     0,
			Speed:       2,
			Length:      200,
			Lines:       4,
			LineSpacing: 40,
		},
		Multibeam: MultibeamConfig{
			Beams:        64,
			SwathWidth:   60,
			PingInterval: 500 * time.Millisecond,
			Noise:        0.05,
		},
		Sidescan: SidescanConfig{
			Samples:      500,
			SlantRange:   50,
			Altitude:     10,
			PingInterval: 250 * time.Millisecond,
			Noise:        0.02,
		},
		Navigation: NavigationConfig{
			Interval: time.Second,
		},
		SoundSpeed: SoundSpeedConfig{
			Surface:  1500,
			Gradient: -0.3,
			Step:     5,
		},
	}
}

func (c *Config) Validate() error {
	positive := func(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

	var errs []error
	if !(c.Seabed.Depth > c.Sidescan.Altitude) {
		errs = append(errs, fmt.Errorf("seabed depth %g must exceed side-scan altitude %g", c.Seabed.Depth, c.Sidescan.Altitude))
	}
	if c.Seabed.Wavelength < 0 {
		errs = append(errs, errors.New("seabed wavelength must not be negative"))
	}
	if !positive(c.Track.Speed) || !positive(c.Track.Length) {
		errs = append(errs, errors.New("track speed and length must be positive"))
	} else if c.Track.lineDuration() < time.Second {
		errs = append(errs, errors.New("track lines must take at least a second to run"))
	}
	if c.Track.Lines < 1 {
		errs = append(errs, errors.New("track needs at least one line"))
	}
	if c.Multibeam.Beams < 2 || !positive(c.Multibeam.SwathWidth) {
		errs = append(errs, errors.New("multibeam needs at least two beams and a positive swath width"))
	}
	if c.Sidescan.Samples < 1 || !positive(c.Sidescan.SlantRange) || !positive(c.Sidescan.Altitude) {
		errs = append(errs, errors.New("side-scan samples, slant range and altitude must be positive"))
	}
	if c.Multibeam.PingInterval <= 0 || c.Sidescan.PingInterval <= 0 || c.Navigation.Interval <= 0 {
		errs = append(errs, errors.New("ping and navigation intervals must be positive"))
	}
	if !positive(c.SoundSpeed.Surface) || !positive(c.SoundSpeed.Step) {
		errs = append(errs, errors.New("sound speed surface velocity and step must be positive"))
	}
	if v := c.SoundSpeed.Surface + c.SoundSpeed.Gradient*(c.Seabed.Depth+c.SoundSpeed.Step); !(v > 0) {
		errs = append(errs, fmt.Errorf("sound speed gradient gives a non-positive velocity %g at the seabed", v))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("synth.Config: %w", err)
	}
	return nil
}
