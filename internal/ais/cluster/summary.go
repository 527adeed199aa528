package cluster

import (
	"sort"

	"github.com/golang/geo/s2"

	"github.com/banshee-data/aismap/internal/ais"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371008.8

// Summary describes one label's members in geographic terms.
type Summary struct {
	Label        int
	Count        int
	CentroidLat  float64
	CentroidLon  float64
	Bounds       s2.Rect
	RadiusMeters float64 // farthest member from the centroid
}

// Summarize groups assignments by label, ascending, so noise (-1) comes
// first when present.
func Summarize(assignments []ais.Assignment) []Summary {
	members := make(map[int][]ais.Position)
	for _, a := range assignments {
		members[a.Label] = append(members[a.Label], a.Position)
	}

	labels := make([]int, 0, len(members))
	for l := range members {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	out := make([]Summary, 0, len(labels))
	for _, l := range labels {
		out = append(out, summarize(l, members[l]))
	}
	return out
}

func summarize(label int, ps []ais.Position) Summary {
	s := Summary{Label: label, Count: len(ps), Bounds: s2.EmptyRect()}

	var sumLat, sumLon float64
	for _, p := range ps {
		sumLat += p.Lat
		sumLon += p.Lon
		s.Bounds = s.Bounds.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
	}
	s.CentroidLat = sumLat / float64(len(ps))
	s.CentroidLon = sumLon / float64(len(ps))

	c := s2.LatLngFromDegrees(s.CentroidLat, s.CentroidLon)
	for _, p := range ps {
		d := c.Distance(s2.LatLngFromDegrees(p.Lat, p.Lon)).Radians() * EarthRadiusMeters
		if d > s.RadiusMeters {
			s.RadiusMeters = d
		}
	}
	return s
}
