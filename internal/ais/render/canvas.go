// Package render draws vessel positions onto a map canvas and persists
// the canvas as an interactive HTML page or a static image.
package render

// DefaultZoom is the initial zoom level of a new map.
const DefaultZoom = 12

// DefaultAssetsHost is where HTML maps load echarts.min.js from. Point a
// canvas at a local copy of the go-echarts assets to view maps offline.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Marker is one circle drawn on the canvas.
type Marker struct {
	Lat, Lon    float64
	Radius      float64
	Color       string // stroke
	FillColor   string
	Fill        bool
	FillOpacity float64
	Layer       string // legend group, e.g. "cluster 3" or "noise"
}

// Canvas is an in-memory map document. Markers are append-only.
type Canvas struct {
	CenterLat, CenterLon float64
	Zoom                 int
	Title                string
	Subtitle             string
	AssetsHost           string // "" means DefaultAssetsHost
	Markers              []Marker
}

// NewCanvas returns an empty canvas centred on (lat, lon).
func NewCanvas(lat, lon float64, zoom int) *Canvas {
	return &Canvas{CenterLat: lat, CenterLon: lon, Zoom: zoom}
}

// Add appends a marker.
func (c *Canvas) Add(m Marker) {
	c.Markers = append(c.Markers, m)
}

// Layers returns the distinct marker layers in first-appearance order.
func (c *Canvas) Layers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.Markers {
		if !seen[m.Layer] {
			seen[m.Layer] = true
			out = append(out, m.Layer)
		}
	}
	return out
}

// bounds returns the lat/lon extent of all markers. ok is false when the
// canvas is empty.
func (c *Canvas) bounds() (minLat, maxLat, minLon, maxLon float64, ok bool) {
	if len(c.Markers) == 0 {
		return 0, 0, 0, 0, false
	}
	minLat, maxLat = c.Markers[0].Lat, c.Markers[0].Lat
	minLon, maxLon = c.Markers[0].Lon, c.Markers[0].Lon
	for _, m := range c.Markers[1:] {
		minLat = min(minLat, m.Lat)
		maxLat = max(maxLat, m.Lat)
		minLon = min(minLon, m.Lon)
		maxLon = max(maxLon, m.Lon)
	}
	return minLat, maxLat, minLon, maxLon, true
}
