package cluster

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// EstimatedPointsPerCell is used for initial spatial index capacity estimation.
const EstimatedPointsPerCell = 4

// maxCellsPerAxis bounds the cell coordinates so tiny eps values cannot
// overflow int64 when a coordinate is divided by the cell size.
const maxCellsPerAxis = 1 << 40

type cellKey struct{ x, y int64 }

// SpatialIndex provides neighbour queries over the rows of an N×2 matrix
// using a regular grid. Cell size is at least eps so a 3x3 cell search
// covers every candidate within eps.
type SpatialIndex struct {
	CellSize float64
	Grid     map[cellKey][]int // cell → row indices
}

// NewSpatialIndex creates a spatial index with the specified cell size.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	return &SpatialIndex{
		CellSize: cellSize,
		Grid:     make(map[cellKey][]int),
	}
}

// newIndexFor sizes the grid for eps, growing cells when eps is so small
// relative to the data extent that cell coordinates would overflow.
func newIndexFor(x *mat.Dense, eps float64) *SpatialIndex {
	r, _ := x.Dims()
	var extent float64
	for i := 0; i < r; i++ {
		extent = math.Max(extent, math.Max(math.Abs(x.At(i, 0)), math.Abs(x.At(i, 1))))
	}
	return NewSpatialIndex(math.Max(eps, extent/maxCellsPerAxis))
}

// Build populates the index from the rows of x.
func (si *SpatialIndex) Build(x *mat.Dense) {
	r, _ := x.Dims()
	si.Grid = make(map[cellKey][]int, r/EstimatedPointsPerCell)
	for i := 0; i < r; i++ {
		k := si.cell(x.At(i, 0), x.At(i, 1))
		si.Grid[k] = append(si.Grid[k], i)
	}
}

func (si *SpatialIndex) cell(a, b float64) cellKey {
	return cellKey{
		x: int64(math.Floor(a / si.CellSize)),
		y: int64(math.Floor(b / si.CellSize)),
	}
}

// RegionQuery returns the rows within eps (Euclidean, inclusive) of row
// idx, including idx itself, in ascending row order within each cell.
func (si *SpatialIndex) RegionQuery(x *mat.Dense, idx int, eps float64) []int {
	return si.regionQueryInto(nil, x, idx, eps)
}

// regionQueryInto appends the RegionQuery result to dst.
func (si *SpatialIndex) regionQueryInto(dst []int, x *mat.Dense, idx int, eps float64) []int {
	pa, pb := x.At(idx, 0), x.At(idx, 1)
	eps2 := eps * eps
	base := si.cell(pa, pb)

	neighbors := dst
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, j := range si.Grid[cellKey{base.x + dx, base.y + dy}] {
				da := x.At(j, 0) - pa
				db := x.At(j, 1) - pb
				if da*da+db*db <= eps2 {
					neighbors = append(neighbors, j)
				}
			}
		}
	}
	return neighbors
}
