package clean

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/monitoring"
)

func quiet(t *testing.T) *monitoring.Recorder {
	t.Helper()
	rec := &monitoring.Recorder{}
	origLog, origDebug := monitoring.Logf, monitoring.Debugf
	monitoring.SetLogger(rec.Logf)
	t.Cleanup(func() {
		monitoring.Logf = origLog
		monitoring.Debugf = origDebug
	})
	return rec
}

func table(rows ...[2]ais.Value) *ais.Table {
	t := &ais.Table{Columns: []string{"mmsi", ais.ColumnLat, ais.ColumnLon}}
	for i, r := range rows {
		t.Rows = append(t.Rows, []ais.Value{ais.IntValue(int64(i)), r[0], r[1]})
	}
	return t
}

func TestClean_KeepsOnlyNumericRows(t *testing.T) {
	quiet(t)
	tbl := table(
		[2]ais.Value{ais.FloatValue(1.0), ais.FloatValue(2.0)},
		[2]ais.Value{ais.Null(), ais.FloatValue(2.0)},
		[2]ais.Value{ais.StringValue("x"), ais.FloatValue(2.0)},
	)

	got, rep, err := Clean(tbl)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ais.Position{Lat: 1.0, Lon: 2.0, SourceIndex: 0}, got[0])
	assert.Equal(t, Report{Total: 3, NullSkipped: 1, TypeSkipped: 1, Kept: 1}, rep)
	assert.Equal(t, 2, rep.Skipped())
}

func TestClean_CoercesIntegersAndPreservesOrder(t *testing.T) {
	quiet(t)
	tbl := table(
		[2]ais.Value{ais.IntValue(30), ais.FloatValue(122.5)},
		[2]ais.Value{ais.Null(), ais.Null()},
		[2]ais.Value{ais.FloatValue(31.25), ais.IntValue(121)},
	)

	got, _, err := Clean(tbl)
	require.NoError(t, err)
	assert.Equal(t, []ais.Position{
		{Lat: 30, Lon: 122.5, SourceIndex: 0},
		{Lat: 31.25, Lon: 121, SourceIndex: 2},
	}, got)
}

func TestClean_DropsInfinities(t *testing.T) {
	quiet(t)
	tbl := table(
		[2]ais.Value{ais.FloatValue(math.Inf(1)), ais.FloatValue(1)},
		[2]ais.Value{ais.FloatValue(1), ais.FloatValue(math.Inf(-1))},
		[2]ais.Value{ais.FloatValue(1), ais.FloatValue(1)},
	)
	got, rep, err := Clean(tbl)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, rep.NonFiniteSkipped)
}

func TestClean_EmptyTableIsNotAnError(t *testing.T) {
	quiet(t)
	got, rep, err := Clean(table())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, rep.Total)
}

func TestClean_MissingColumns(t *testing.T) {
	quiet(t)
	tbl := &ais.Table{Columns: []string{"mmsi", "latitude", ais.ColumnLon}}
	_, _, err := Clean(tbl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ais.ErrSchema))

	var schemaErr *ais.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{ais.ColumnLat}, schemaErr.Missing)
}

func TestClean_PerRowDiagnosticsOnlyAtDebug(t *testing.T) {
	rec := quiet(t)
	tbl := table(
		[2]ais.Value{ais.Null(), ais.FloatValue(2.0)},
		[2]ais.Value{ais.FloatValue(1.0), ais.FloatValue(2.0)},
	)
	_, _, err := Clean(tbl)
	require.NoError(t, err)
	assert.Len(t, rec.Lines(), 1, "summary line only")

	debug := &monitoring.Recorder{}
	monitoring.SetDebugLogger(debug.Logf)
	_, _, err = Clean(tbl)
	require.NoError(t, err)
	require.Len(t, debug.Lines(), 1)
	assert.Contains(t, debug.Lines()[0], "skip row 0 (null coordinate)")
}

func TestProfile(t *testing.T) {
	tbl := table(
		[2]ais.Value{ais.FloatValue(1.0), ais.IntValue(2)},
		[2]ais.Value{ais.Null(), ais.StringValue("e")},
		[2]ais.Value{ais.StringValue("x"), ais.IntValue(3)},
	)
	profiles := Profile(tbl, ais.ColumnLat, ais.ColumnLon, "missing")
	require.Len(t, profiles, 2)

	assert.Equal(t, 1, profiles[0].Nulls)
	assert.Equal(t, map[ais.Kind]int{ais.KindFloat: 1, ais.KindNull: 1, ais.KindString: 1}, profiles[0].Kinds)
	assert.Equal(t, map[ais.Kind]int{ais.KindInt: 2, ais.KindString: 1}, profiles[1].Kinds)
}

func TestLogProfile(t *testing.T) {
	rec := quiet(t)
	LogProfile(table([2]ais.Value{ais.Null(), ais.IntValue(2)}))
	lines := rec.Lines()
	require.Len(t, lines, 2)
	assert.True(t, strings.Contains(lines[0], "column lat: nulls=1 kinds{null=1}"), lines[0])
	assert.True(t, strings.Contains(lines[1], "column lon: nulls=0 kinds{int=1}"), lines[1])
}

func TestCentroid(t *testing.T) {
	lat, lon, err := Centroid([]ais.Position{{Lat: 1, Lon: 1}, {Lat: 3, Lon: 3}})
	require.NoError(t, err)
	assert.Equal(t, 2.0, lat)
	assert.Equal(t, 2.0, lon)

	lat, lon, err = Centroid([]ais.Position{{Lat: 30.5, Lon: 122.25}})
	require.NoError(t, err)
	assert.Equal(t, 30.5, lat)
	assert.Equal(t, 122.25, lon)
}

func TestCentroid_Empty(t *testing.T) {
	_, _, err := Centroid(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ais.ErrEmptyDataset))
}
