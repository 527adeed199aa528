package render

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"
)

// Snapshot dimensions.
const (
	snapshotWidth  = 10 * vg.Inch
	snapshotHeight = 10 * vg.Inch
)

// writeSnapshot draws the canvas as a static scatter plot in format
// ("png", "svg" or "pdf").
func writeSnapshot(c *Canvas, format string) ([]byte, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	legend := make(map[string]bool)
	for _, s := range groupSeries(c.Markers) {
		pts := make(plotter.XYs, len(s.markers))
		for i, m := range s.markers {
			pts[i] = plotter.XY{X: m.Lon, Y: m.Lat}
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", s.layer, err)
		}
		glyph, err := glyphStyle(s.style)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", s.layer, err)
		}
		sc.GlyphStyle = glyph
		p.Add(sc)
		if !legend[s.layer] {
			legend[s.layer] = true
			p.Legend.Add(s.layer, sc)
		}
	}

	wt, err := p.WriterTo(snapshotWidth, snapshotHeight, format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func glyphStyle(s MarkerStyle) (draw.GlyphStyle, error) {
	name, shape := s.Color, draw.GlyphDrawer(draw.RingGlyph{})
	if s.Fill {
		name, shape = s.FillColor, draw.CircleGlyph{}
	}
	rgba, err := ParseColor(name)
	if err != nil {
		return draw.GlyphStyle{}, err
	}
	alpha := s.FillOpacity
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	return draw.GlyphStyle{
		Color:  color.NRGBA{R: rgba.R, G: rgba.G, B: rgba.B, A: uint8(alpha * 255)},
		Radius: vg.Points(s.Radius),
		Shape:  shape,
	}, nil
}
