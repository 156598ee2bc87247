package storage

import (
	"database/sql"
	"fmt"

	"github.com/roman-kulish/bathymetry/internal/survey"
	"gonum.org/v1/gonum/spatial/r3"
)

type surveyData struct {
	ID        int64
	StartTime int64
	Kind      string
	Source    string
	Config    sql.NullString
}

func (d *surveyData) toSurvey() *survey.Survey {
	s := &survey.Survey{
		ID:        d.ID,
		StartTime: fromNanos(d.StartTime),
		Kind:      survey.Kind(d.Kind),
		Source:    d.Source,
	}
	if d.Config.Valid {
		s.Config = &d.Config.String
	}
	return s
}

type pingData struct {
	Timestamp int64
	X, Y, Z   float64
	Heading   float64
	Beams     []byte
}

func (d *pingData) toPing() (survey.Ping, error) {
	beams, err := decodeBeams(d.Beams)
	if err != nil {
		return survey.Ping{}, err
	}
	return survey.Ping{
		Timestamp: fromNanos(d.Timestamp),
		Position:  r3.Vec{X: d.X, Y: d.Y, Z: d.Z},
		Heading:   d.Heading,
		Beams:     beams,
	}, nil
}

type channelData struct {
	Samples    []byte
	SlantRange float64
	Duration   float64
}

func (d *channelData) toChannel() (survey.Channel, error) {
	samples, err := decodeSamples(d.Samples)
	if err != nil {
		return survey.Channel{}, err
	}
	return survey.Channel{
		Intensities:  samples,
		SlantRange:   d.SlantRange,
		TimeDuration: d.Duration,
	}, nil
}

type sidescanPingData struct {
	Timestamp int64
	X, Y, Z   float64
	Heading   float64
	Port      channelData
	Starboard channelData
}

func (d *sidescanPingData) toSidescanPing() (p survey.SidescanPing, err error) {
	if p.Port, err = d.Port.toChannel(); err != nil {
		return p, fmt.Errorf("port channel: %w", err)
	}
	if p.Starboard, err = d.Starboard.toChannel(); err != nil {
		return p, fmt.Errorf("starboard channel: %w", err)
	}
	p.Timestamp = fromNanos(d.Timestamp)
	p.Position = r3.Vec{X: d.X, Y: d.Y, Z: d.Z}
	p.Heading = d.Heading
	return p, nil
}
