package clean

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/aismap/internal/ais"
)

// Centroid returns the arithmetic mean latitude and longitude, used as the
// initial map viewport centre. No weighting or outlier rejection.
func Centroid(positions []ais.Position) (lat, lon float64, err error) {
	if len(positions) == 0 {
		return 0, 0, fmt.Errorf("%w: no positions to centre the map on", ais.ErrEmptyDataset)
	}
	lats := make([]float64, len(positions))
	lons := make([]float64, len(positions))
	for i, p := range positions {
		lats[i] = p.Lat
		lons[i] = p.Lon
	}
	return stat.Mean(lats, nil), stat.Mean(lons, nil), nil
}
