package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/roman-kulish/bathymetry/internal/bathy"
	"github.com/roman-kulish/bathymetry/internal/render"
)

const defaultResolution = 0.5

type Config struct {
	MeshDB         string // Survey database holding multibeam pings
	SonarDB        string // Survey database holding side-scan pings
	NavDB          string // Survey database holding the navigation track
	SoundSpeedFile string // YAML sound speed profile

	SimConfigFile string // Optional simulation configuration, defaults apply when empty
	CachePath     string // Optional cache database, caching is disabled when empty
	OutputDir     string
	Resolution    float64
	Aggregation   bathy.Aggregation
	Theme         render.ColorTheme
	MeshSurveyID  *int64 // Multibeam survey to build from, the first one when nil
	Verbose       bool
	NoAnnotations bool
}

func NewConfig() *Config {
	return &Config{
		OutputDir:   ".",
		Resolution:  defaultResolution,
		Aggregation: bathy.Mean,
		Theme:       render.JetTheme,
	}
}

func NewConfigFromCLI() (*Config, error) {
	return ParseArgs(os.Args[0], os.Args[1:], os.Stderr)
}

// ParseArgs parses command line arguments, without the program name, into a Config.
func ParseArgs(name string, args []string, output io.Writer) (*Config, error) {
	c := NewConfig()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <mesh-db> <sonar-db> <nav-db> <svp.yaml>\n", name)
		fs.PrintDefaults()
	}

	var aggregation, theme string
	var surveyID int64
	fs.StringVar(&c.SimConfigFile, "c", "", "Path to the simulation configuration file")
	fs.StringVar(&c.CachePath, "cache", "", "Path to the cache database")
	fs.StringVar(&c.OutputDir, "o", c.OutputDir, "Output directory")
	fs.Float64Var(&c.Resolution, "r", c.Resolution, "Mesh resolution in meters")
	fs.StringVar(&aggregation, "agg", c.Aggregation.String(), "Cell height aggregation. [mean, median, shoalest, deepest]")
	fs.StringVar(&theme, "theme", string(c.Theme), "Height map color theme. [jet, classic, grayscale, thermal, marine]")
	fs.Int64Var(&surveyID, "survey", 0, "Multibeam survey ID in the mesh database")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable height map scales and info bar")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "survey" {
			c.MeshSurveyID = &surveyID
		}
	})

	err := c.validate(fs.NArg())
	if err == nil {
		c.Aggregation, err = bathy.ParseAggregation(aggregation)
	}
	if err == nil {
		c.Theme, err = render.ParseColorTheme(theme)
	}
	if err != nil {
		fs.Usage()
		return nil, err
	}

	c.MeshDB, c.SonarDB, c.NavDB, c.SoundSpeedFile = fs.Arg(0), fs.Arg(1), fs.Arg(2), fs.Arg(3)
	return c, nil
}

func (c *Config) validate(nargs int) error {
	switch {
	case nargs != 4:
		return fmt.Errorf("expected 4 positional arguments, %d given", nargs)
	case !(c.Resolution > 0) || math.IsInf(c.Resolution, 0):
		return fmt.Errorf("resolution must be a positive number: %g given", c.Resolution)
	case c.MeshSurveyID != nil && *c.MeshSurveyID <= 0:
		return errors.New("survey id must be positive")
	case c.OutputDir == "":
		return errors.New("output directory is required")
	}
	return nil
}
