package render

import (
	"github.com/banshee-data/aismap/internal/ais"
)

// RenderPoints adds one marker per position, in order, and returns the
// number added.
func RenderPoints(c *Canvas, positions []ais.Position, style MarkerStyle) int {
	for _, p := range positions {
		c.Add(style.marker(p.Lat, p.Lon))
	}
	return len(positions)
}
