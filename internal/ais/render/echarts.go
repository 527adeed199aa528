package render

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// series groups markers that share a layer and a drawing style.
type series struct {
	layer   string
	style   MarkerStyle
	markers []Marker
}

// groupSeries splits markers into series in first-appearance order.
func groupSeries(markers []Marker) []*series {
	var out []*series
	index := make(map[MarkerStyle]*series)
	for _, m := range markers {
		key := MarkerStyle{
			Radius:      m.Radius,
			Color:       m.Color,
			FillColor:   m.FillColor,
			Fill:        m.Fill,
			FillOpacity: m.FillOpacity,
			Layer:       m.Layer,
		}
		s, ok := index[key]
		if !ok {
			s = &series{layer: m.Layer, style: key}
			index[key] = s
			out = append(out, s)
		}
		s.markers = append(s.markers, m)
	}
	return out
}

// axisRange pads [lo, hi] so edge markers are not clipped.
func axisRange(lo, hi float64) (float64, float64) {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.01
	}
	return lo - pad, hi + pad
}

// zoomWindow returns the data-zoom window, in percent of [lo, hi], of a
// view of width span centred on center.
func zoomWindow(center, span, lo, hi float64) (start, end float32) {
	if hi <= lo {
		return 0, 100
	}
	pct := func(v float64) float32 {
		return float32(math.Max(0, math.Min(100, (v-lo)/(hi-lo)*100)))
	}
	start, end = pct(center-span/2), pct(center+span/2)
	if end <= start {
		return 0, 100
	}
	return start, end
}

// viewSpan is the degrees of longitude and latitude visible at zoom.
func viewSpan(zoom int) (lonSpan, latSpan float64) {
	scale := math.Pow(2, float64(zoom))
	return 360 / scale, 180 / scale
}

func writeHTML(c *Canvas, w io.Writer) error {
	scatter := charts.NewScatter()

	assets := c.AssetsHost
	if assets == "" {
		assets = DefaultAssetsHost
	}

	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: c.Title, Width: "1200px", Height: "900px", AssetsHost: assets}),
		charts.WithTitleOpts(opts.Title{Title: c.Title, Subtitle: c.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Right: "10"}),
	}

	if minLat, maxLat, minLon, maxLon, ok := c.bounds(); ok {
		xMin, xMax := axisRange(minLon, maxLon)
		yMin, yMax := axisRange(minLat, maxLat)
		lonSpan, latSpan := viewSpan(c.Zoom)
		xs, xe := zoomWindow(c.CenterLon, lonSpan, xMin, xMax)
		ys, ye := zoomWindow(c.CenterLat, latSpan, yMin, yMax)

		global = append(global,
			charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Longitude", NameLocation: "middle", NameGap: 25, Min: xMin, Max: xMax}),
			charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Latitude", NameLocation: "middle", NameGap: 40, Min: yMin, Max: yMax}),
			charts.WithDataZoomOpts(
				opts.DataZoom{Type: "inside", XAxisIndex: []int{0}, Start: xs, End: xe, FilterMode: "empty"},
				opts.DataZoom{Type: "inside", YAxisIndex: []int{0}, Start: ys, End: ye, FilterMode: "empty"},
			),
		)
	}
	scatter.SetGlobalOptions(global...)

	for _, s := range groupSeries(c.Markers) {
		data := make([]opts.ScatterData, len(s.markers))
		for i, m := range s.markers {
			data[i] = opts.ScatterData{Value: []interface{}{m.Lon, m.Lat}}
		}

		fill := "transparent"
		if s.style.Fill {
			fill = s.style.FillColor
		}
		scatter.AddSeries(s.layer, data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2 * s.style.Radius}),
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color:       fill,
				BorderColor: s.style.Color,
				BorderWidth: 1,
				Opacity:     opts.Float(float32(s.style.FillOpacity)),
			}),
		)
	}

	return scatter.Render(w)
}
