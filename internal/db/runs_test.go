package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/ais/cluster"
	"github.com/banshee-data/aismap/internal/monitoring"
	"github.com/banshee-data/aismap/internal/timeutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDB_AppliesMigrations(t *testing.T) {
	db := setupTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	for _, table := range []string{"runs", "positions", "cluster_summaries"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n))
		assert.Equal(t, 1, n, table)
	}
}

func TestNewDB_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	first, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewDB(path)
	require.NoError(t, err)
	defer second.Close()
	version, _, err := second.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestNewDB_InMemory(t *testing.T) {
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.RecordRun(context.Background(), RunRecord{Run: Run{Source: "mem.csv", Encoding: "utf-8", Mode: "points"}})
	require.NoError(t, err)
}

func TestMigrateDown(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.MigrateDown())

	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='cluster_summaries'`).Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, db.MigrateUp())
}

func clusteredRecord() RunRecord {
	as := []ais.Assignment{
		{Position: ais.Position{Lat: 30, Lon: 122, SourceIndex: 0}, Label: 0},
		{Position: ais.Position{Lat: 30.001, Lon: 122.001, SourceIndex: 2}, Label: 0},
		{Position: ais.Position{Lat: 31, Lon: 123, SourceIndex: 3}, Label: ais.NoiseLabel},
	}
	return RunRecord{
		Run: Run{
			Source: "xiuchuan.csv", Encoding: "GBK", Mode: "all",
			Eps: 0.1, MinSamples: 2,
			TotalRows: 4, KeptRows: 3, TypeSkipped: 1,
			Clusters: 1, Noise: 1,
			CenterLat: 30.3337, CenterLon: 122.3337,
		},
		Assignments: as,
		Summaries:   cluster.Summarize(as),
	}
}

func TestRecordRun_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	rec := clusteredRecord()

	id, err := db.RecordRun(ctx, rec)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "run IDs are UUIDs")

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	got := runs[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "GBK", got.Encoding)
	assert.Equal(t, 0.1, got.Eps)
	assert.Equal(t, 2, got.MinSamples)
	assert.Equal(t, 1, got.TypeSkipped)
	assert.Equal(t, 1, got.Clusters)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)

	assignments, err := db.RunAssignments(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rec.Assignments, assignments)

	summaries, err := db.RunSummaries(ctx, id)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, ais.NoiseLabel, summaries[0].Label)
	assert.Equal(t, 0, summaries[1].Label)
	assert.Equal(t, 2, summaries[1].Count)
	assert.InDelta(t, 30, summaries[1].MinLat, 1e-9)
	assert.InDelta(t, 30.001, summaries[1].MaxLat, 1e-9)
	assert.Greater(t, summaries[1].RadiusMeters, 0.0)
}

func TestRecordRun_PointsOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	positions := []ais.Position{{Lat: 1, Lon: 2, SourceIndex: 0}, {Lat: 3, Lon: 4, SourceIndex: 5}}

	id, err := db.RecordRun(ctx, RunRecord{
		Run:       Run{ID: "fixed-id", Source: "in.csv", Encoding: "utf-8", Mode: "points", TotalRows: 6, KeptRows: 2},
		Positions: positions,
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	got, err := db.RunPositions(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, positions, got)

	assignments, err := db.RunAssignments(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, assignments, "unclustered runs have no labels")

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Zero(t, runs[0].Eps)
	assert.Zero(t, runs[0].MinSamples)
}

func TestRecordRun_DuplicateIDRollsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	rec := clusteredRecord()
	rec.Run.ID = "dup"

	_, err := db.RecordRun(ctx, rec)
	require.NoError(t, err)
	_, err = db.RecordRun(ctx, rec)
	require.Error(t, err)

	got, err := db.RunAssignments(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, got, len(rec.Assignments), "failed insert must not leave partial rows")
}

func TestRuns_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "new", "mid"} {
		offset := map[int]time.Duration{0: 0, 1: 2 * time.Hour, 2: time.Hour}[i]
		_, err := db.RecordRun(ctx, RunRecord{Run: Run{ID: id, Source: "s", Encoding: "utf-8", Mode: "points", CreatedAt: base.Add(offset)}})
		require.NoError(t, err)
	}

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
	assert.True(t, runs[2].CreatedAt.Equal(base))
}

func TestRecordRun_StampsFromClock(t *testing.T) {
	db := setupTestDB(t)
	stamp := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	db.Clock = timeutil.NewMockClock(stamp)

	_, err := db.RecordRun(context.Background(), RunRecord{Run: Run{Source: "s", Encoding: "utf-8", Mode: "points"}})
	require.NoError(t, err)

	runs, err := db.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].CreatedAt.Equal(stamp), "created_at = %v", runs[0].CreatedAt)
}
