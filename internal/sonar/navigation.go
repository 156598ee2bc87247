package sonar

import (
	"errors"
	"math"
	"slices"

	"github.com/roman-kulish/bathymetry/internal/survey"
)

// ErrNoNavigation is returned when there are no navigation entries to match against.
var ErrNoNavigation = errors.New("no navigation entries")

// MatchStats summarises a navigation matching run.
type MatchStats struct {
	Matched int // Pings with a position from navigation
	Dropped int // Pings outside the navigation time span
}

// MatchNavigation returns copies of pings positioned from the navigation
// track. Position and heading are interpolated linearly between the entries
// bracketing each ping; heading follows the shorter arc. Pings recorded
// before the first or after the last entry are dropped.
//
// Neither input has to be sorted; the result is in ping timestamp order.
func MatchNavigation(pings []survey.SidescanPing, entries []survey.NavEntry) ([]survey.SidescanPing, MatchStats, error) {
	if len(entries) == 0 {
		return nil, MatchStats{Dropped: len(pings)}, ErrNoNavigation
	}

	nav := slices.Clone(entries)
	slices.SortStableFunc(nav, func(a, b survey.NavEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	sorted := slices.Clone(pings)
	slices.SortStableFunc(sorted, func(a, b survey.SidescanPing) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	var stats MatchStats
	matched := make([]survey.SidescanPing, 0, len(sorted))
	for _, p := range sorted {
		i, found := slices.BinarySearchFunc(nav, p, func(e survey.NavEntry, p survey.SidescanPing) int {
			return e.Timestamp.Compare(p.Timestamp)
		})

		switch {
		case found:
			p.Position = nav[i].Position
			p.Heading = WrapAngle(nav[i].Heading)

		case i == 0 || i == len(nav):
			stats.Dropped++
			continue

		default:
			prev, next := nav[i-1], nav[i]
			t := float64(p.Timestamp.Sub(prev.Timestamp)) / float64(next.Timestamp.Sub(prev.Timestamp))

			p.Position.X = lerp(prev.Position.X, next.Position.X, t)
			p.Position.Y = lerp(prev.Position.Y, next.Position.Y, t)
			p.Position.Z = lerp(prev.Position.Z, next.Position.Z, t)
			p.Heading = WrapAngle(prev.Heading + t*angleDiff(prev.Heading, next.Heading))
		}

		matched = append(matched, p)
		stats.Matched++
	}

	return matched, stats, nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// angleDiff returns the signed shortest rotation from a to b, in [-pi, pi].
func angleDiff(a, b float64) float64 {
	return math.Remainder(b-a, 2*math.Pi)
}

// WrapAngle maps an angle in radians into (-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Remainder(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
