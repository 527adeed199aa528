package clean

import (
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/monitoring"
)

// ColumnProfile counts the value kinds found in one column.
type ColumnProfile struct {
	Column string
	Nulls  int
	Kinds  map[ais.Kind]int
}

// Profile counts nulls and value kinds for the named columns. Columns
// missing from the table are skipped.
func Profile(t *ais.Table, columns ...string) []ColumnProfile {
	out := make([]ColumnProfile, 0, len(columns))
	for _, name := range columns {
		col := t.Index(name)
		if col < 0 {
			continue
		}
		p := ColumnProfile{Column: name, Kinds: make(map[ais.Kind]int)}
		for _, row := range t.Rows {
			v := row[col]
			p.Kinds[v.Kind]++
			if v.IsNull() {
				p.Nulls++
			}
		}
		out = append(out, p)
	}
	return out
}

// LogProfile logs the null and kind counts of the coordinate columns.
func LogProfile(t *ais.Table) {
	for _, p := range Profile(t, ais.ColumnLat, ais.ColumnLon) {
		kinds := make([]ais.Kind, 0, len(p.Kinds))
		for k := range p.Kinds {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

		parts := make([]string, len(kinds))
		for i, k := range kinds {
			parts[i] = k.String() + "=" + strconv.Itoa(p.Kinds[k])
		}
		monitoring.Logf("[clean] column %s: nulls=%d kinds{%s}", p.Column, p.Nulls, strings.Join(parts, " "))
	}
}

// LogPositions logs the first n cleaned positions.
func LogPositions(positions []ais.Position, n int) {
	if n > len(positions) {
		n = len(positions)
	}
	for _, p := range positions[:n] {
		monitoring.Logf("[clean] row %d: lat=%g lon=%g", p.SourceIndex, p.Lat, p.Lon)
	}
}
