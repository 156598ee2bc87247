package sim

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSidescanYaw         Degrees = 5
	DefaultTracingMapSize              = 30.0
	DefaultIntensityMultiplier         = 1.0
)

// DefaultSensorOffset is the side-scan transducer position relative to the
// navigation reference, in the vehicle frame.
var DefaultSensorOffset = Vec3{X: 2, Y: -1.5, Z: 0}

// Degrees is an angle in degrees. In YAML it is a number, optionally
// suffixed with "deg".
type Degrees float64

// Radians converts d to radians.
func (d Degrees) Radians() float64 {
	return float64(d) * math.Pi / 180
}

func (d *Degrees) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value.Value), "deg"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("sim.Degrees: failed to parse %q: %w", value.Value, err)
	}

	*d = Degrees(v)
	return nil
}

func (d Degrees) MarshalYAML() (interface{}, error) {
	return float64(d), nil
}

// Vec3 is a 3D vector written in YAML as a sequence of three numbers.
type Vec3 r3.Vec

func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("sim.Vec3: expected a sequence [x, y, z], line %d", value.Line)
	}

	var xyz []float64
	if err := value.Decode(&xyz); err != nil {
		return fmt.Errorf("sim.Vec3: %w", err)
	}
	if len(xyz) != 3 {
		return fmt.Errorf("sim.Vec3: expected 3 components, got %d", len(xyz))
	}

	*v = Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	return nil
}

func (v Vec3) MarshalYAML() (interface{}, error) {
	return []float64{v.X, v.Y, v.Z}, nil
}

// Vec returns v as a gonum vector.
func (v Vec3) Vec() r3.Vec {
	return r3.Vec(v)
}

// Config holds the parameters handed to the side-scan simulator. It is loaded
// once and not modified afterwards.
type Config struct {
	RayTracing          bool    `yaml:"rayTracing" json:"rayTracing"`                   // Snell ray tracing through the sound speed profile
	WaterfallMode       bool    `yaml:"waterfallMode" json:"waterfallMode"`             // Generate side-scan from the recorded waterfall
	SidescanYaw         Degrees `yaml:"sidescanYaw" json:"sidescanYaw"`                 // Transducer yaw relative to vehicle heading
	SensorOffset        Vec3    `yaml:"sensorOffset,flow" json:"sensorOffset"`          // Transducer position in the vehicle frame, metres
	TracingMapSize      float64 `yaml:"tracingMapSize" json:"tracingMapSize"`           // Side of the local mesh used per ping, metres
	IntensityMultiplier float64 `yaml:"intensityMultiplier" json:"intensityMultiplier"` // Gain applied to simulated intensities
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		SidescanYaw:         DefaultSidescanYaw,
		SensorOffset:        DefaultSensorOffset,
		TracingMapSize:      DefaultTracingMapSize,
		IntensityMultiplier: DefaultIntensityMultiplier,
	}
}

// LoadConfig reads a configuration file. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if yaw := float64(c.SidescanYaw); math.IsNaN(yaw) || yaw < -180 || yaw > 180 {
		return fmt.Errorf("sim.Config: sidescan yaw must be between -180 and 180 degrees: %g given", yaw)
	}
	for _, v := range [3]float64{c.SensorOffset.X, c.SensorOffset.Y, c.SensorOffset.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("sim.Config: sensor offset must be finite: %v given", c.SensorOffset)
		}
	}
	if !(c.TracingMapSize > 0) || math.IsInf(c.TracingMapSize, 0) {
		return fmt.Errorf("sim.Config: tracing map size must be positive: %g given", c.TracingMapSize)
	}
	if !(c.IntensityMultiplier > 0) || math.IsInf(c.IntensityMultiplier, 0) {
		return fmt.Errorf("sim.Config: intensity multiplier must be positive: %g given", c.IntensityMultiplier)
	}
	return nil
}
