package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/ais/cluster"
	"github.com/banshee-data/aismap/internal/monitoring"
	"github.com/banshee-data/aismap/internal/timeutil"
)

// Run is one pipeline execution.
type Run struct {
	ID               string
	Source           string
	Encoding         string
	Mode             string
	Eps              float64 // 0 when clustering did not run
	MinSamples       int
	TotalRows        int
	KeptRows         int
	NullSkipped      int
	TypeSkipped      int
	NonFiniteSkipped int
	Clusters         int
	Noise            int
	CenterLat        float64
	CenterLon        float64
	CreatedAt        time.Time
}

// RunRecord is everything persisted for one run. Assignments is nil when
// the run did not cluster; positions are then stored without labels.
type RunRecord struct {
	Run         Run
	Positions   []ais.Position
	Assignments []ais.Assignment
	Summaries   []cluster.Summary
}

// RecordRun stores a run in one transaction and returns its ID. A blank
// Run.ID gets a fresh UUID, and a zero CreatedAt is stamped from db.Clock.
func (db *DB) RecordRun(ctx context.Context, rec RunRecord) (string, error) {
	run := rec.Run
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		clock := db.Clock
		if clock == nil {
			clock = timeutil.RealClock{}
		}
		run.CreatedAt = clock.Now()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var eps sql.NullFloat64
	var minSamples sql.NullInt64
	if rec.Assignments != nil {
		eps = sql.NullFloat64{Float64: run.Eps, Valid: true}
		minSamples = sql.NullInt64{Int64: int64(run.MinSamples), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, source, encoding, mode, eps, min_samples,
			total_rows, kept_rows, null_skipped, type_skipped, nonfinite_skipped,
			clusters, noise, center_lat, center_lon, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Encoding, run.Mode, eps, minSamples,
		run.TotalRows, run.KeptRows, run.NullSkipped, run.TypeSkipped, run.NonFiniteSkipped,
		run.Clusters, run.Noise, run.CenterLat, run.CenterLon, run.CreatedAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	posStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO positions (run_id, source_index, lat, lon, label) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare positions: %w", err)
	}
	defer posStmt.Close()

	if rec.Assignments != nil {
		for _, a := range rec.Assignments {
			if _, err := posStmt.ExecContext(ctx, run.ID, a.SourceIndex, a.Lat, a.Lon, a.Label); err != nil {
				return "", fmt.Errorf("insert position %d: %w", a.SourceIndex, err)
			}
		}
	} else {
		for _, p := range rec.Positions {
			if _, err := posStmt.ExecContext(ctx, run.ID, p.SourceIndex, p.Lat, p.Lon, nil); err != nil {
				return "", fmt.Errorf("insert position %d: %w", p.SourceIndex, err)
			}
		}
	}

	for _, s := range rec.Summaries {
		lo, hi := s.Bounds.Lo(), s.Bounds.Hi()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cluster_summaries (run_id, label, member_count, centroid_lat, centroid_lon,
				min_lat, max_lat, min_lon, max_lon, radius_m)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, s.Label, s.Count, s.CentroidLat, s.CentroidLon,
			lo.Lat.Degrees(), hi.Lat.Degrees(), lo.Lng.Degrees(), hi.Lng.Degrees(), s.RadiusMeters)
		if err != nil {
			return "", fmt.Errorf("insert summary %d: %w", s.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	monitoring.Logf("[store] recorded run %s (%d positions, %d summaries)",
		run.ID, max(len(rec.Positions), len(rec.Assignments)), len(rec.Summaries))
	return run.ID, nil
}

// Runs lists stored runs, newest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, source, encoding, mode, eps, min_samples,
			total_rows, kept_rows, null_skipped, type_skipped, nonfinite_skipped,
			clusters, noise, center_lat, center_lon, created_at
		FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var eps sql.NullFloat64
		var minSamples sql.NullInt64
		var created int64
		if err := rows.Scan(&r.ID, &r.Source, &r.Encoding, &r.Mode, &eps, &minSamples,
			&r.TotalRows, &r.KeptRows, &r.NullSkipped, &r.TypeSkipped, &r.NonFiniteSkipped,
			&r.Clusters, &r.Noise, &r.CenterLat, &r.CenterLon, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Eps = eps.Float64
		r.MinSamples = int(minSamples.Int64)
		r.CreatedAt = time.Unix(0, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunPositions returns every stored position of a run in source order.
func (db *DB) RunPositions(ctx context.Context, runID string) ([]ais.Position, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT source_index, lat, lon FROM positions WHERE run_id = ? ORDER BY source_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	var out []ais.Position
	for rows.Next() {
		var p ais.Position
		if err := rows.Scan(&p.SourceIndex, &p.Lat, &p.Lon); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RunAssignments returns the labelled positions of a run in source order.
// A run that did not cluster has none.
func (db *DB) RunAssignments(ctx context.Context, runID string) ([]ais.Assignment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT source_index, lat, lon, label FROM positions
		WHERE run_id = ? AND label IS NOT NULL ORDER BY source_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var out []ais.Assignment
	for rows.Next() {
		var a ais.Assignment
		if err := rows.Scan(&a.SourceIndex, &a.Lat, &a.Lon, &a.Label); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SummaryRow is a stored cluster summary. Bounds are kept as plain degrees.
type SummaryRow struct {
	Label          int
	Count          int
	CentroidLat    float64
	CentroidLon    float64
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	RadiusMeters   float64
}

// RunSummaries returns the cluster summaries of a run ordered by label.
func (db *DB) RunSummaries(ctx context.Context, runID string) ([]SummaryRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT label, member_count, centroid_lat, centroid_lon, min_lat, max_lat, min_lon, max_lon, radius_m
		FROM cluster_summaries WHERE run_id = ? ORDER BY label`, runID)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var s SummaryRow
		if err := rows.Scan(&s.Label, &s.Count, &s.CentroidLat, &s.CentroidLon,
			&s.MinLat, &s.MaxLat, &s.MinLon, &s.MaxLon, &s.RadiusMeters); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
