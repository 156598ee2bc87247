package survey

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	KindMultibeam  Kind = "mbes" // multibeam echo sounder bathymetry
	KindSidescan   Kind = "sss"  // side-scan sonar imagery
	KindNavigation Kind = "nav"  // vehicle navigation track
)

// Kind identifies the kind of data a survey holds.
type Kind string

// Survey represents a single data acquisition run stored in a survey database.
type Survey struct {
	ID        int64     `json:"id"`               // Unique identifier for the survey
	StartTime time.Time `json:"startTime"`        // When the survey was recorded
	Kind      Kind      `json:"kind"`             // Type of data held by the survey
	Source    string    `json:"source"`           // Instrument or file the data came from
	Config    *string   `json:"config,omitempty"` // Optional acquisition configuration in JSON format
}

// Ping is a single multibeam observation. Beams are soundings already
// resolved into the survey's planar coordinate frame (easting, northing, height).
type Ping struct {
	Timestamp time.Time `json:"timestamp"`
	Position  r3.Vec    `json:"position"` // Sensor position
	Heading   float64   `json:"heading"`  // Yaw in radians, counter-clockwise from the easting axis
	Beams     []r3.Vec  `json:"beams,omitempty"`
}

// Channel holds the returns of one side of a side-scan ping.
type Channel struct {
	Intensities  []int16 `json:"intensities"`  // Raw 16 bit returns, nearest to the sensor first
	SlantRange   float64 `json:"slantRange"`   // Slant range in meters
	TimeDuration float64 `json:"timeDuration"` // Two-way travel time covered by the channel, seconds
}

// SidescanPing is a single side-scan sonar observation with a port and a starboard channel.
type SidescanPing struct {
	Timestamp time.Time `json:"timestamp"`
	Position  r3.Vec    `json:"position"`
	Heading   float64   `json:"heading"`
	Port      Channel   `json:"port"`
	Starboard Channel   `json:"starboard"`
}

// NavEntry is a single vehicle navigation fix.
type NavEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Position  r3.Vec    `json:"position"`
	Heading   float64   `json:"heading"`
}

// BeamCount returns the total number of beams across all pings.
func BeamCount(pings []Ping) int {
	var n int
	for _, p := range pings {
		n += len(p.Beams)
	}
	return n
}
