package render

import (
	"errors"
	"fmt"
	"sort"

	"github.com/banshee-data/aismap/internal/ais"
)

// Palette is an ordered list of colour names cycled through by label.
type Palette []string

// DefaultPalette returns the seven-colour cluster palette.
func DefaultPalette() Palette {
	return Palette{"red", "blue", "green", "purple", "orange", "gray", "black"}
}

// ErrEmptyPalette is returned when a cluster map is drawn without colours.
var ErrEmptyPalette = errors.New("palette is empty")

// PaletteIndex maps a label onto [0, n). Negative labels wrap from the
// end, so noise (-1) takes the last colour.
func PaletteIndex(label, n int) int {
	i := label % n
	if i < 0 {
		i += n
	}
	return i
}

// LayerName is the legend group for a label.
func LayerName(label int) string {
	if label == ais.NoiseLabel {
		return "noise"
	}
	return fmt.Sprintf("cluster %d", label)
}

// RenderClusters draws every assignment coloured by its label. Labels are
// visited in ascending order, so noise is drawn first. It returns the
// number of markers added.
func RenderClusters(c *Canvas, assignments []ais.Assignment, palette Palette, style MarkerStyle) (int, error) {
	if len(palette) == 0 {
		return 0, fmt.Errorf("%w: %w", ais.ErrConfig, ErrEmptyPalette)
	}

	byLabel := make(map[int][]ais.Position)
	for _, a := range assignments {
		byLabel[a.Label] = append(byLabel[a.Label], a.Position)
	}
	labels := make([]int, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	added := 0
	for _, l := range labels {
		s := style
		s.Color = palette[PaletteIndex(l, len(palette))]
		s.FillColor = s.Color
		s.Layer = LayerName(l)
		added += RenderPoints(c, byLabel[l], s)
	}
	return added, nil
}
