package sim

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/bathymetry/internal/bathy"
	"github.com/roman-kulish/bathymetry/internal/sonar"
	"github.com/roman-kulish/bathymetry/internal/survey"
)

// Scene is everything a side-scan simulator needs: the seabed, the pings to
// simulate and the configuration to run with.
type Scene struct {
	Config     Config
	Mesh       *bathy.Mesh
	HeightMap  *bathy.HeightMap
	Bounds     bathy.BoundingBox
	Pings      []survey.SidescanPing
	SoundSpeed *sonar.SoundSpeedProfile

	index *bathy.MeshIndex
}

// NewScene validates and assembles a scene.
func NewScene(config Config, build *bathy.Result, pings []survey.SidescanPing, svp *sonar.SoundSpeedProfile) (*Scene, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if build == nil || build.Mesh == nil || build.HeightMap == nil {
		return nil, errors.New("scene requires a mesh and a height map")
	}
	if len(pings) == 0 {
		return nil, errors.New("scene requires at least one side-scan ping")
	}
	if svp == nil {
		return nil, errors.New("scene requires a sound speed profile")
	}
	if err := svp.Validate(); err != nil {
		return nil, fmt.Errorf("sound speed profile: %w", err)
	}

	return &Scene{
		Config:     config,
		Mesh:       build.Mesh,
		HeightMap:  build.HeightMap,
		Bounds:     build.Bounds,
		Pings:      pings,
		SoundSpeed: svp,
		index:      bathy.NewMeshIndex(build.Mesh),
	}, nil
}

// LocalMesh returns the part of the seabed mesh around ping i that the
// simulator traces rays against, a square of side Config.TracingMapSize.
func (s *Scene) LocalMesh(i int) *bathy.Mesh {
	return s.index.Crop(s.Pings[i].Position, s.Config.TracingMapSize/2)
}

// PingsOverMesh returns the number of pings positioned within the mesh bounds.
func (s *Scene) PingsOverMesh() int {
	var n int
	for _, p := range s.Pings {
		if s.Bounds.Contains(p.Position.X, p.Position.Y) {
			n++
		}
	}
	return n
}

// Manifest describes a scene and the files it was written to.
type Manifest struct {
	Config     Config             `yaml:"config"`
	Grid       GridManifest       `yaml:"grid"`
	Bounds     BoundsManifest     `yaml:"bounds"`
	Mesh       MeshManifest       `yaml:"mesh"`
	Pings      PingsManifest      `yaml:"pings"`
	SoundSpeed SoundSpeedManifest `yaml:"soundSpeed"`
	Files      map[string]string  `yaml:"files,omitempty"`
}

type GridManifest struct {
	Resolution float64 `yaml:"resolution"`
	Rows       int     `yaml:"rows"`
	Cols       int     `yaml:"cols"`
	Populated  int     `yaml:"populated"`
}

type BoundsManifest struct {
	MinX float64 `yaml:"minX"`
	MaxX float64 `yaml:"maxX"`
	MinY float64 `yaml:"minY"`
	MaxY float64 `yaml:"maxY"`
	MinZ float64 `yaml:"minZ"`
	MaxZ float64 `yaml:"maxZ"`
	RefZ float64 `yaml:"refZ"`
}

type MeshManifest struct {
	Vertices int `yaml:"vertices"`
	Faces    int `yaml:"faces"`
}

type PingsManifest struct {
	Count    int       `yaml:"count"`
	OverMesh int       `yaml:"overMesh"`
	First    time.Time `yaml:"first"`
	Last     time.Time `yaml:"last"`
}

type SoundSpeedManifest struct {
	Name         string  `yaml:"name,omitempty"`
	Samples      int     `yaml:"samples"`
	MeanVelocity float64 `yaml:"meanVelocity"`
}

// Manifest summarises the scene. files maps output kinds to the paths they
// were written to.
func (s *Scene) Manifest(files map[string]string) *Manifest {
	b := s.Bounds
	return &Manifest{
		Config: s.Config,
		Grid: GridManifest{
			Resolution: s.HeightMap.Resolution,
			Rows:       s.HeightMap.Rows,
			Cols:       s.HeightMap.Cols,
			Populated:  s.HeightMap.Populated(),
		},
		Bounds: BoundsManifest{
			MinX: b.MinX, MaxX: b.MaxX,
			MinY: b.MinY, MaxY: b.MaxY,
			MinZ: b.MinZ, MaxZ: b.MaxZ,
			RefZ: b.RefZ(),
		},
		Mesh: MeshManifest{
			Vertices: len(s.Mesh.Vertices),
			Faces:    len(s.Mesh.Faces),
		},
		Pings: PingsManifest{
			Count:    len(s.Pings),
			OverMesh: s.PingsOverMesh(),
			First:    s.Pings[0].Timestamp,
			Last:     s.Pings[len(s.Pings)-1].Timestamp,
		},
		SoundSpeed: SoundSpeedManifest{
			Name:         s.SoundSpeed.Name,
			Samples:      len(s.SoundSpeed.Samples),
			MeanVelocity: s.SoundSpeed.MeanVelocity(),
		},
		Files: files,
	}
}

// Write encodes the manifest as YAML.
func (m *Manifest) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return enc.Close()
}
