package cluster

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/aismap/internal/ais"
)

// Scaler holds the per-column statistics used to standardize (lat, lon).
type Scaler struct {
	Mean [2]float64
	Std  [2]float64 // population standard deviation
}

// FitScaler computes column means and population standard deviations.
func FitScaler(positions []ais.Position) Scaler {
	var s Scaler
	if len(positions) == 0 {
		return s
	}
	lats := make([]float64, len(positions))
	lons := make([]float64, len(positions))
	for i, p := range positions {
		lats[i] = p.Lat
		lons[i] = p.Lon
	}
	s.Mean[0], s.Std[0] = stat.PopMeanStdDev(lats, nil)
	s.Mean[1], s.Std[1] = stat.PopMeanStdDev(lons, nil)
	return s
}

// Transform returns the N×2 matrix of z-scores. A column with zero
// variance maps to 0 instead of dividing by zero.
func (s Scaler) Transform(positions []ais.Position) *mat.Dense {
	if len(positions) == 0 {
		return nil
	}
	x := mat.NewDense(len(positions), 2, nil)
	for i, p := range positions {
		x.Set(i, 0, scale(p.Lat, s.Mean[0], s.Std[0]))
		x.Set(i, 1, scale(p.Lon, s.Mean[1], s.Std[1]))
	}
	return x
}

// Standardize fits a scaler to positions and transforms them in one step.
func Standardize(positions []ais.Position) *mat.Dense {
	return FitScaler(positions).Transform(positions)
}

func scale(v, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return (v - mean) / std
}
