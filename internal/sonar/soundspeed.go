package sonar

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// SoundSpeed is one sample of a sound velocity profile.
type SoundSpeed struct {
	Depth    float64 `yaml:"depth" json:"depth"`       // Metres below the surface
	Velocity float64 `yaml:"velocity" json:"velocity"` // Metres per second
}

// SoundSpeedProfile describes the speed of sound through the water column.
type SoundSpeedProfile struct {
	Name    string       `yaml:"name,omitempty" json:"name,omitempty"`
	Samples []SoundSpeed `yaml:"samples" json:"samples"`
}

// LoadSoundSpeedProfile reads and validates a profile from a YAML file.
func LoadSoundSpeedProfile(path string) (*SoundSpeedProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sound speed profile: %w", err)
	}

	var svp SoundSpeedProfile
	if err = yaml.Unmarshal(data, &svp); err != nil {
		return nil, fmt.Errorf("parsing sound speed profile: %w", err)
	}
	if err = svp.Validate(); err != nil {
		return nil, fmt.Errorf("validating sound speed profile: %w", err)
	}
	return &svp, nil
}

// Validate checks that the profile has samples with strictly increasing,
// non-negative depths and positive velocities.
func (p *SoundSpeedProfile) Validate() error {
	if len(p.Samples) == 0 {
		return errors.New("profile has no samples")
	}
	for i, s := range p.Samples {
		if math.IsNaN(s.Depth) || math.IsInf(s.Depth, 0) || s.Depth < 0 {
			return fmt.Errorf("sample %d: invalid depth %g", i, s.Depth)
		}
		if math.IsNaN(s.Velocity) || math.IsInf(s.Velocity, 0) || s.Velocity <= 0 {
			return fmt.Errorf("sample %d: invalid velocity %g", i, s.Velocity)
		}
		if i > 0 && s.Depth <= p.Samples[i-1].Depth {
			return fmt.Errorf("sample %d: depth %g does not increase", i, s.Depth)
		}
	}
	return nil
}

// MeanVelocity returns the unweighted mean velocity of the profile samples.
func (p *SoundSpeedProfile) MeanVelocity() float64 {
	v := make([]float64, len(p.Samples))
	for i, s := range p.Samples {
		v[i] = s.Velocity
	}
	return stat.Mean(v, nil)
}

// VelocityAt returns the velocity at depth, linearly interpolated between
// samples and held constant beyond the first and last one.
func (p *SoundSpeedProfile) VelocityAt(depth float64) float64 {
	s := p.Samples
	if depth <= s[0].Depth {
		return s[0].Velocity
	}
	for i := 1; i < len(s); i++ {
		if depth <= s[i].Depth {
			t := (depth - s[i-1].Depth) / (s[i].Depth - s[i-1].Depth)
			return lerp(s[i-1].Velocity, s[i].Velocity, t)
		}
	}
	return s[len(s)-1].Velocity
}
