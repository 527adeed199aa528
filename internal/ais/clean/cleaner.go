// Package clean validates the coordinate columns of a decoded table and
// computes the map centroid of the surviving positions.
package clean

import (
	"fmt"
	"math"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/monitoring"
)

// SkipReason classifies why a row was excluded.
type SkipReason int

const (
	SkipNull      SkipReason = iota // lat or lon absent
	SkipType                        // lat or lon stored as text
	SkipNonFinite                   // lat or lon is ±Inf
)

func (r SkipReason) String() string {
	switch r {
	case SkipNull:
		return "null coordinate"
	case SkipType:
		return "non-numeric coordinate"
	case SkipNonFinite:
		return "non-finite coordinate"
	default:
		return fmt.Sprintf("skip(%d)", int(r))
	}
}

// Report aggregates the data-quality events of one cleaning pass.
type Report struct {
	Total            int
	NullSkipped      int
	TypeSkipped      int
	NonFiniteSkipped int
	Kept             int
}

// Skipped returns the number of excluded rows.
func (r Report) Skipped() int { return r.NullSkipped + r.TypeSkipped + r.NonFiniteSkipped }

func (r *Report) count(reason SkipReason) {
	switch reason {
	case SkipNull:
		r.NullSkipped++
	case SkipType:
		r.TypeSkipped++
	case SkipNonFinite:
		r.NonFiniteSkipped++
	}
}

// Clean returns the rows whose lat and lon are both present and stored as
// numbers, coerced to float64, in source order. Text coordinates are
// dropped rather than parsed. A table without both coordinate columns is
// an *ais.SchemaError.
func Clean(t *ais.Table) ([]ais.Position, Report, error) {
	if err := CheckSchema(t); err != nil {
		return nil, Report{}, err
	}

	latCol, lonCol := t.Index(ais.ColumnLat), t.Index(ais.ColumnLon)
	rep := Report{Total: t.Len()}
	positions := make([]ais.Position, 0, t.Len())

	for i, row := range t.Rows {
		lat, lon := row[latCol], row[lonCol]
		reason, ok := classify(lat, lon)
		if !ok {
			rep.count(reason)
			monitoring.Debugf("[clean] skip row %d (%s): lat=%s lon=%s", i, reason, lat, lon)
			continue
		}
		latF, _ := lat.Float64()
		lonF, _ := lon.Float64()
		positions = append(positions, ais.Position{Lat: latF, Lon: lonF, SourceIndex: i})
	}
	rep.Kept = len(positions)

	monitoring.Logf("[clean] %d rows in, %d kept, %d skipped (null=%d non-numeric=%d non-finite=%d)",
		rep.Total, rep.Kept, rep.Skipped(), rep.NullSkipped, rep.TypeSkipped, rep.NonFiniteSkipped)
	return positions, rep, nil
}

// CheckSchema verifies the required coordinate columns are present.
func CheckSchema(t *ais.Table) error {
	var missing []string
	for _, col := range []string{ais.ColumnLat, ais.ColumnLon} {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &ais.SchemaError{Missing: missing, Columns: t.Columns}
	}
	return nil
}

// classify applies the row rule: nulls first, then storage type, then
// finiteness.
func classify(lat, lon ais.Value) (SkipReason, bool) {
	if lat.IsNull() || lon.IsNull() {
		return SkipNull, false
	}
	if !lat.IsNumeric() || !lon.IsNumeric() {
		return SkipType, false
	}
	latF, _ := lat.Float64()
	lonF, _ := lon.Float64()
	if math.IsInf(latF, 0) || math.IsInf(lonF, 0) {
		return SkipNonFinite, false
	}
	return 0, true
}
