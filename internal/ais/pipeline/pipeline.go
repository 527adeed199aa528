// Package pipeline runs one batch over a position file: decode, clean,
// centre, then the point-map and cluster-map branches, and finally the
// optional snapshot and run record.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/ais/clean"
	"github.com/banshee-data/aismap/internal/ais/cluster"
	"github.com/banshee-data/aismap/internal/ais/ingest"
	"github.com/banshee-data/aismap/internal/ais/render"
	"github.com/banshee-data/aismap/internal/config"
	"github.com/banshee-data/aismap/internal/db"
	"github.com/banshee-data/aismap/internal/fsutil"
	"github.com/banshee-data/aismap/internal/monitoring"
	"github.com/banshee-data/aismap/internal/timeutil"
	"github.com/banshee-data/aismap/internal/units"
	"github.com/banshee-data/aismap/internal/version"
)

// RunStore persists a finished run.
type RunStore interface {
	RecordRun(ctx context.Context, rec db.RunRecord) (string, error)
}

// Pipeline wires the stages together. Zero-value fields fall back to the
// OS filesystem, a DBSCAN clusterer built from Config, a SQLite store
// opened from Config's db_path (if any) and the wall clock.
type Pipeline struct {
	Config    *config.PipelineConfig
	FS        fsutil.FileSystem
	Clusterer cluster.Clusterer
	Store     RunStore
	Clock     timeutil.Clock
}

// Result is what a run produced.
type Result struct {
	Source   string
	Encoding string
	Report   clean.Report

	Positions            []ais.Position
	CenterLat, CenterLon float64

	Assignments   []ais.Assignment // nil unless the cluster branch ran
	Summaries     []cluster.Summary
	Clusters      int
	Noise         int
	DistanceUnits string // units for Summary radii in reports

	PointMarkers   int
	ClusterMarkers int
	Artifacts      []string // point map, cluster map, then snapshot
	RunID          string   // "" when no store is configured

	StartedAt time.Time
	Elapsed   time.Duration
}

// New returns a pipeline over the OS filesystem.
func New(cfg *config.PipelineConfig) *Pipeline {
	return &Pipeline{Config: cfg, FS: fsutil.OSFileSystem{}}
}

// Run executes the batch. Every returned error is fatal and matches one of
// the ais sentinel errors, except for store failures which are returned
// wrapped as-is.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = config.EmptyPipelineConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fsys := p.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	mode := cfg.GetMode()
	clock := p.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	started := clock.Now()

	clusterer := p.Clusterer
	if clusterer == nil {
		clusterer = cluster.NewDBSCANClusterer(cfg.GetEps(), cfg.GetMinSamples())
	}
	// Reject bad parameters before any work is done, even in points mode.
	if err := clusterer.GetParams().Validate(); err != nil {
		return nil, err
	}

	decoder := &ingest.Decoder{FS: fsys, Encodings: cfg.GetCandidateEncodings(), Comma: cfg.GetDelimiter()}
	decoded, err := decoder.Decode(cfg.GetFilePath())
	if err != nil {
		return nil, err
	}
	ingest.LogPreview(decoded.Table)
	clean.LogProfile(decoded.Table)

	positions, report, err := clean.Clean(decoded.Table)
	if err != nil {
		return nil, err
	}
	clean.LogPositions(positions, ingest.PreviewRows)

	lat, lon, err := clean.Centroid(positions)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("[pipeline] map centre lat=%.6f lon=%.6f", lat, lon)

	res := &Result{
		Source:        cfg.GetFilePath(),
		Encoding:      decoded.Encoding,
		Report:        report,
		Positions:     positions,
		CenterLat:     lat,
		CenterLon:     lon,
		DistanceUnits: cfg.GetDistanceUnits(),
		StartedAt:     started,
	}

	var pointCanvas, clusterCanvas *render.Canvas
	var pointPath, clusterPath string

	// The branches only read positions and each owns its canvas and the
	// Result fields it sets.
	g, gctx := errgroup.WithContext(ctx)
	if mode == config.ModeAll || mode == config.ModePoints {
		g.Go(func() error {
			pointCanvas = render.NewCanvas(lat, lon, cfg.GetZoom())
			pointCanvas.Title = "AIS positions"
			pointCanvas.Subtitle = subtitle(res.Source)
			pointCanvas.AssetsHost = cfg.GetAssetsHost()
			res.PointMarkers = render.RenderPoints(pointCanvas, positions, render.DefaultPointStyle())
			monitoring.Logf("[pipeline] point map: %d markers", res.PointMarkers)

			if err := gctx.Err(); err != nil {
				return err
			}
			pointPath = cfg.GetPointMapPath()
			return render.Save(fsys, pointCanvas, pointPath)
		})
	}
	if mode == config.ModeAll || mode == config.ModeClusters {
		g.Go(func() error {
			assignments, err := clusterer.Cluster(positions)
			if err != nil {
				return err
			}
			res.Assignments = assignments
			res.Clusters, res.Noise = countLabels(assignments)
			res.Summaries = cluster.Summarize(assignments)
			logSummaries(res.Summaries, res.DistanceUnits)

			params := clusterer.GetParams()
			clusterCanvas = render.NewCanvas(lat, lon, cfg.GetZoom())
			clusterCanvas.Title = fmt.Sprintf("AIS clusters (eps=%g, min_samples=%d)", params.Eps, params.MinSamples)
			clusterCanvas.Subtitle = subtitle(res.Source)
			clusterCanvas.AssetsHost = cfg.GetAssetsHost()
			n, err := render.RenderClusters(clusterCanvas, assignments, cfg.GetPalette(), render.DefaultClusterStyle())
			if err != nil {
				return err
			}
			res.ClusterMarkers = n
			monitoring.Logf("[pipeline] cluster map: %d markers, %d clusters, %d noise", n, res.Clusters, res.Noise)

			if err := gctx.Err(); err != nil {
				return err
			}
			clusterPath = cfg.GetClusterMapPath()
			return render.Save(fsys, clusterCanvas, clusterPath)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, path := range []string{pointPath, clusterPath} {
		if path != "" {
			res.Artifacts = append(res.Artifacts, path)
		}
	}

	if snap := cfg.GetSnapshotPath(); snap != "" {
		canvas := clusterCanvas
		if canvas == nil {
			canvas = pointCanvas
		}
		if err := render.Save(fsys, canvas, snap); err != nil {
			return nil, err
		}
		res.Artifacts = append(res.Artifacts, snap)
	}

	if err := p.record(ctx, cfg, res); err != nil {
		return nil, err
	}
	res.Elapsed = clock.Since(started)
	monitoring.Logf("[pipeline] done in %s: %d artifacts", res.Elapsed.Round(time.Millisecond), len(res.Artifacts))
	return res, nil
}

// record stores the run when a store is set or db_path is configured.
func (p *Pipeline) record(ctx context.Context, cfg *config.PipelineConfig, res *Result) error {
	store := p.Store
	if store == nil {
		path := cfg.GetDBPath()
		if path == "" {
			return nil
		}
		opened, err := db.NewDB(path)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer opened.Close()
		store = opened
	}

	run := db.Run{
		Source:           res.Source,
		Encoding:         res.Encoding,
		Mode:             cfg.GetMode(),
		TotalRows:        res.Report.Total,
		KeptRows:         res.Report.Kept,
		NullSkipped:      res.Report.NullSkipped,
		TypeSkipped:      res.Report.TypeSkipped,
		NonFiniteSkipped: res.Report.NonFiniteSkipped,
		Clusters:         res.Clusters,
		Noise:            res.Noise,
		CenterLat:        res.CenterLat,
		CenterLon:        res.CenterLon,
		CreatedAt:        res.StartedAt,
	}
	if res.Assignments != nil {
		run.Eps = cfg.GetEps()
		run.MinSamples = cfg.GetMinSamples()
		if p.Clusterer != nil {
			params := p.Clusterer.GetParams()
			run.Eps, run.MinSamples = params.Eps, params.MinSamples
		}
	}

	id, err := store.RecordRun(ctx, db.RunRecord{
		Run:         run,
		Positions:   res.Positions,
		Assignments: res.Assignments,
		Summaries:   res.Summaries,
	})
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	res.RunID = id
	return nil
}

func subtitle(source string) string {
	return source + " | " + version.String()
}

// countLabels returns the number of distinct clusters and noise points.
func countLabels(assignments []ais.Assignment) (clusters, noise int) {
	for _, a := range assignments {
		if a.IsNoise() {
			noise++
		} else if a.Label+1 > clusters {
			clusters = a.Label + 1
		}
	}
	return clusters, noise
}

func logSummaries(summaries []cluster.Summary, unit string) {
	for _, s := range summaries {
		name := render.LayerName(s.Label)
		monitoring.Logf("[cluster] %s: %d positions, centre (%.5f, %.5f), radius %.3g %s",
			name, s.Count, s.CentroidLat, s.CentroidLon, units.ConvertDistance(s.RadiusMeters, unit), unit)
	}
}
