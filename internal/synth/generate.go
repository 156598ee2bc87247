package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/bathymetry/internal/sonar"
	"github.com/roman-kulish/bathymetry/internal/survey"
)

const (
	// Nominal speed of sound used for side-scan travel times
	nominalSoundSpeed = 1500.0

	// Full scale of side-scan intensities
	intensityScale = 20000.0

	gradientStep = 0.01
)

// Survey is a generated survey.
type Survey struct {
	Multibeam  []survey.Ping
	Sidescan   []survey.SidescanPing // Raw pings, positioned from Navigation later
	Navigation []survey.NavEntry
	SoundSpeed sonar.SoundSpeedProfile
}

// HeightAt returns the seabed height at (x, y), negative below the surface.
func (s SeabedConfig) HeightAt(x, y float64) float64 {
	h := -s.Depth + s.Slope*x
	if s.Wavelength > 0 {
		k := 2 * math.Pi / s.Wavelength
		h += s.Amplitude * math.Sin(k*x) * math.Cos(k*y/1.7)
	}
	return h
}

// Normal returns the upward unit normal of the seabed at (x, y).
func (s SeabedConfig) Normal(x, y float64) r3.Vec {
	dx := (s.HeightAt(x+gradientStep, y) - s.HeightAt(x-gradientStep, y)) / (2 * gradientStep)
	dy := (s.HeightAt(x, y+gradientStep) - s.HeightAt(x, y-gradientStep)) / (2 * gradientStep)
	return r3.Unit(r3.Vec{X: -dx, Y: -dy, Z: 1})
}

type pose struct {
	position r3.Vec
	heading  float64
}

// lineDuration returns the time it takes to run one line.
func (t TrackConfig) lineDuration() time.Duration {
	return time.Duration(t.Length / t.Speed * float64(time.Second))
}

// Duration returns the time it takes to run every line.
func (t TrackConfig) Duration() time.Duration {
	return time.Duration(t.Lines) * t.lineDuration()
}

// poseAt returns the vessel pose at elapsed time d. Lines alternate
// direction; the transit between lines is instantaneous.
func (t TrackConfig) poseAt(d time.Duration) pose {
	lineDur := t.lineDuration()
	line := min(int(d/lineDur), t.Lines-1)
	along := (d - time.Duration(line)*lineDur).Seconds() * t.Speed

	heading := t.Heading.Radians()
	forward := r3.Vec{X: math.Cos(heading), Y: math.Sin(heading)}
	port := r3.Vec{X: -forward.Y, Y: forward.X}

	start := r3.Add(t.Origin.Vec(), r3.Scale(float64(line)*t.LineSpacing, port))
	if line%2 == 1 {
		start = r3.Add(start, r3.Scale(t.Length, forward))
		forward = r3.Scale(-1, forward)
		heading += math.Pi
	}

	return pose{
		position: r3.Add(start, r3.Scale(along, forward)),
		heading:  sonar.WrapAngle(heading),
	}
}

// Generate produces a survey from c. The same config always produces the
// same survey.
func Generate(c Config) (*Survey, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	g := &generator{
		config: c,
		rng:    rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15)),
	}

	s := &Survey{
		Multibeam:  g.multibeam(),
		Sidescan:   g.sidescan(),
		Navigation: g.navigation(),
		SoundSpeed: g.soundSpeed(),
	}
	if err := s.SoundSpeed.Validate(); err != nil {
		return nil, fmt.Errorf("generated sound speed profile: %w", err)
	}
	return s, nil
}

type generator struct {
	config Config
	rng    *rand.Rand
}

func (g *generator) timestamps(interval time.Duration, inclusive bool) []time.Duration {
	end := g.config.Track.Duration()

	var ts []time.Duration
	for d := time.Duration(0); d < end || (inclusive && d == end); d += interval {
		ts = append(ts, d)
	}
	if inclusive && ts[len(ts)-1] != end {
		ts = append(ts, end)
	}
	return ts
}

func (g *generator) multibeam() []survey.Ping {
	mb := g.config.Multibeam
	seabed := g.config.Seabed

	ts := g.timestamps(mb.PingInterval, false)
	pings := make([]survey.Ping, len(ts))
	for i, d := range ts {
		p := g.config.Track.poseAt(d)
		port := r3.Vec{X: -math.Sin(p.heading), Y: math.Cos(p.heading)}

		beams := make([]r3.Vec, mb.Beams)
		for j := range beams {
			across := -mb.SwathWidth/2 + float64(j)*mb.SwathWidth/float64(mb.Beams-1)
			b := r3.Add(p.position, r3.Scale(across, port))
			b.Z = seabed.HeightAt(b.X, b.Y) + g.rng.NormFloat64()*mb.Noise
			beams[j] = b
		}

		pings[i] = survey.Ping{
			Timestamp: g.config.Track.Start.Add(d),
			Position:  p.position,
			Heading:   p.heading,
			Beams:     beams,
		}
	}
	return pings
}

func (g *generator) sidescan() []survey.SidescanPing {
	ss := g.config.Sidescan

	ts := g.timestamps(ss.PingInterval, false)
	pings := make([]survey.SidescanPing, len(ts))
	for i, d := range ts {
		p := g.config.Track.poseAt(d)
		fish := p.position
		fish.Z = g.config.Seabed.HeightAt(fish.X, fish.Y) + ss.Altitude

		port := r3.Vec{X: -math.Sin(p.heading), Y: math.Cos(p.heading)}
		pings[i] = survey.SidescanPing{
			Timestamp: g.config.Track.Start.Add(d),
			Port:      g.channel(fish, port),
			Starboard: g.channel(fish, r3.Scale(-1, port)),
		}
	}
	return pings
}

// channel simulates the returns on one side of the towfish as the cosine of
// the incidence angle on a flat bottom at the fish's altitude, shaded by the
// local seabed normal.
func (g *generator) channel(fish, side r3.Vec) survey.Channel {
	ss := g.config.Sidescan

	samples := make([]int16, ss.Samples)
	for i := range samples {
		r := float64(i+1) * ss.SlantRange / float64(ss.Samples)

		var v float64
		if r > ss.Altitude {
			ground := math.Sqrt(r*r - ss.Altitude*ss.Altitude)
			hit := r3.Add(fish, r3.Scale(ground, side))
			ray := r3.Unit(r3.Vec{X: hit.X - fish.X, Y: hit.Y - fish.Y, Z: -ss.Altitude})
			v = max(-r3.Dot(ray, g.config.Seabed.Normal(hit.X, hit.Y)), 0)
		}
		v += g.rng.NormFloat64() * ss.Noise

		samples[i] = int16(min(max(v*intensityScale, math.MinInt16), math.MaxInt16))
	}

	return survey.Channel{
		Intensities:  samples,
		SlantRange:   ss.SlantRange,
		TimeDuration: 2 * ss.SlantRange / nominalSoundSpeed,
	}
}

// navigation covers the whole track so that no side-scan ping falls outside it.
func (g *generator) navigation() []survey.NavEntry {
	ts := g.timestamps(g.config.Navigation.Interval, true)
	entries := make([]survey.NavEntry, len(ts))
	for i, d := range ts {
		p := g.config.Track.poseAt(d)
		entries[i] = survey.NavEntry{
			Timestamp: g.config.Track.Start.Add(d),
			Position:  p.position,
			Heading:   p.heading,
		}
	}
	return entries
}

func (g *generator) soundSpeed() sonar.SoundSpeedProfile {
	sc := g.config.SoundSpeed
	maxDepth := g.config.Seabed.Depth + sc.Step

	svp := sonar.SoundSpeedProfile{Name: "synthetic"}
	for d := 0.0; d <= maxDepth; d += sc.Step {
		svp.Samples = append(svp.Samples, sonar.SoundSpeed{
			Depth:    d,
			Velocity: sc.Surface + sc.Gradient*d,
		})
	}
	return svp
}
