package sonar

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/bathymetry/internal/survey"
)

// CorrectSensorOffset returns copies of pings moved from the navigation
// reference point to the sensor. offset is expressed in the vehicle frame
// (x forward, y to port, z up) and is rotated by each ping's heading.
func CorrectSensorOffset(pings []survey.SidescanPing, offset r3.Vec) []survey.SidescanPing {
	zAxis := r3.Vec{Z: 1}

	corrected := make([]survey.SidescanPing, len(pings))
	for i, p := range pings {
		rot := r3.NewRotation(p.Heading, zAxis)
		p.Position = r3.Add(p.Position, rot.Rotate(offset))
		corrected[i] = p
	}
	return corrected
}
