package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/bathymetry/internal/synth"
)

// Config represents the main application configuration
type Config struct {
	Settings Settings     `yaml:"settings"`
	Survey   synth.Config `yaml:"survey"`
	Output   OutputConfig `yaml:"output"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// OutputConfig names the files written into Directory
type OutputConfig struct {
	Directory  string `yaml:"directory"`
	Multibeam  string `yaml:"multibeam"`
	Sidescan   string `yaml:"sidescan"`
	Navigation string `yaml:"navigation"`
	SoundSpeed string `yaml:"soundSpeed"`
	Overwrite  bool   `yaml:"overwrite"` // Replace existing files instead of failing
}

func NewConfig() *Config {
	return &Config{
		Settings: Settings{LogLevel: "info"},
		Survey:   synth.DefaultConfig(),
		Output: OutputConfig{
			Directory:  "data",
			Multibeam:  "mbes.sqlite",
			Sidescan:   "sss.sqlite",
			Navigation: "nav.sqlite",
			SoundSpeed: "svp.yaml",
		},
	}
}

// LoadConfig reads a configuration file over the defaults of NewConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := NewConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	o := c.Output
	if o.Directory == "" {
		return errors.New("output directory is required")
	}
	names := map[string]struct{}{}
	for _, name := range []string{o.Multibeam, o.Sidescan, o.Navigation, o.SoundSpeed} {
		if name == "" {
			return errors.New("output file names must not be empty")
		}
		if _, ok := names[name]; ok {
			return fmt.Errorf("output file %s is used twice", name)
		}
		names[name] = struct{}{}
	}
	return c.Survey.Validate()
}
