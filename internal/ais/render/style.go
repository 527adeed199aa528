package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// MarkerStyle is the drawing style applied to every marker a renderer
// emits. Renderers may override Color, FillColor and Layer.
type MarkerStyle struct {
	Radius      float64
	Color       string
	FillColor   string
	Fill        bool
	FillOpacity float64
	Layer       string
}

// DefaultPointStyle is the style of the position map: small filled red dots.
func DefaultPointStyle() MarkerStyle {
	return MarkerStyle{
		Radius:      1,
		Color:       "red",
		FillColor:   "red",
		Fill:        true,
		FillOpacity: 0.9,
		Layer:       "positions",
	}
}

// DefaultClusterStyle is the style of the cluster map. Colours come from
// the palette.
func DefaultClusterStyle() MarkerStyle {
	return MarkerStyle{
		Radius:      3,
		Fill:        true,
		FillOpacity: 0.7,
	}
}

func (s MarkerStyle) marker(lat, lon float64) Marker {
	return Marker{
		Lat:         lat,
		Lon:         lon,
		Radius:      s.Radius,
		Color:       s.Color,
		FillColor:   s.FillColor,
		Fill:        s.Fill,
		FillOpacity: s.FillOpacity,
		Layer:       s.Layer,
	}
}

// ParseColor resolves a CSS colour name or #rrggbb / #rgb hex string.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	if !strings.HasPrefix(name, "#") {
		return color.RGBA{}, fmt.Errorf("unknown colour %q", s)
	}
	hex := name[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
