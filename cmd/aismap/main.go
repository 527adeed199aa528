// Package main is the aismap command: it reads a vessel position file,
// writes a point map and a DBSCAN cluster map, and optionally records the
// run in SQLite.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/ais/cluster"
	"github.com/banshee-data/aismap/internal/ais/pipeline"
	"github.com/banshee-data/aismap/internal/ais/render"
	"github.com/banshee-data/aismap/internal/config"
	"github.com/banshee-data/aismap/internal/monitoring"
	"github.com/banshee-data/aismap/internal/units"
	"github.com/banshee-data/aismap/internal/version"
)

// Options holds the parsed command line.
type Options struct {
	ConfigPath  string
	Input       string
	Encodings   string
	Eps         float64
	MinSamples  int
	Palette     string
	Zoom        int
	Units       string
	Assets      string
	MapOut      string
	ClustersOut string
	Snapshot    string
	DBPath      string
	Mode        string
	Verbose     bool
	ShowVersion bool

	// set records which flags appeared on the command line; only those
	// override the config file.
	set map[string]bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if opts.ShowVersion {
		fmt.Println(version.String())
		return
	}
	if opts.Verbose {
		monitoring.SetDebugLogger(log.Printf)
	}

	cfg, err := opts.pipelineConfig()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.New(cfg).Run(ctx)
	if err != nil {
		log.Fatalf("Run failed (%s): %v", failureKind(err), err)
	}
	printSummary(os.Stdout, res)
}

func parseFlags(args []string) (Options, error) {
	opts := Options{set: make(map[string]bool)}
	fs := flag.NewFlagSet("aismap", flag.ContinueOnError)

	fs.StringVar(&opts.ConfigPath, "config", "", "Pipeline config file (.json, .yaml or .yml)")
	fs.StringVar(&opts.Input, "input", config.DefaultFilePath, "Position file to read")
	fs.StringVar(&opts.Encodings, "encodings", "", "Comma-separated candidate encodings, tried in order")
	fs.Float64Var(&opts.Eps, "eps", cluster.DefaultEps, "DBSCAN neighbourhood radius in standardized units")
	fs.IntVar(&opts.MinSamples, "min-samples", cluster.DefaultMinSamples, "DBSCAN neighbourhood size (self included) for a core point")
	fs.StringVar(&opts.Palette, "palette", "", "Comma-separated cluster colours (CSS names or #rrggbb)")
	fs.IntVar(&opts.Zoom, "zoom", render.DefaultZoom, "Initial map zoom level")
	fs.StringVar(&opts.Units, "units", units.Meters, "Distance units for cluster extents ("+units.GetValidUnitsString()+")")
	fs.StringVar(&opts.Assets, "assets", render.DefaultAssetsHost, "URL or directory (ending in /) serving echarts.min.js for the HTML maps")
	fs.StringVar(&opts.MapOut, "map-out", config.DefaultPointMapPath, "Point map output path")
	fs.StringVar(&opts.ClustersOut, "clusters-out", config.DefaultClusterMapPath, "Cluster map output path")
	fs.StringVar(&opts.Snapshot, "snapshot", "", "Optional static snapshot (.png, .svg or .pdf)")
	fs.StringVar(&opts.DBPath, "db", "", "SQLite database path (optional, records the run)")
	fs.StringVar(&opts.Mode, "mode", config.ModeAll, "What to produce: points, clusters or all")
	fs.BoolVar(&opts.Verbose, "v", false, "Verbose output (per-row diagnostics)")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: aismap [options]\n\n")
		fmt.Fprintf(out, "Reads AIS position reports and writes:\n")
		fmt.Fprintf(out, "  1. a point map of every valid position (%s)\n", config.DefaultPointMapPath)
		fmt.Fprintf(out, "  2. a DBSCAN cluster map of the standardized positions (%s)\n\n", config.DefaultClusterMapPath)
		fmt.Fprintf(out, "Flags given on the command line override the config file.\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  aismap -input xiuchuan.csv\n")
		fmt.Fprintf(out, "  aismap -config config/aismap.defaults.json -mode clusters -eps 0.05 -snapshot clusters.png\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// pipelineConfig loads the config file (or the built-in defaults) and
// applies the flags that were set explicitly.
func (o Options) pipelineConfig() (*config.PipelineConfig, error) {
	cfg := config.DefaultPipelineConfig()
	if o.ConfigPath != "" {
		loaded, err := config.LoadPipelineConfig(o.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if o.set["input"] {
		cfg.FilePath = &o.Input
	}
	if o.set["encodings"] {
		cfg.CandidateEncodings = splitList(o.Encodings)
	}
	if o.set["eps"] {
		cfg.Eps = &o.Eps
	}
	if o.set["min-samples"] {
		cfg.MinSamples = &o.MinSamples
	}
	if o.set["palette"] {
		cfg.Palette = splitList(o.Palette)
	}
	if o.set["zoom"] {
		cfg.Zoom = &o.Zoom
	}
	if o.set["units"] {
		cfg.DistanceUnits = &o.Units
	}
	if o.set["assets"] {
		cfg.AssetsHost = &o.Assets
	}
	if o.set["map-out"] {
		cfg.PointMapPath = &o.MapOut
	}
	if o.set["clusters-out"] {
		cfg.ClusterMapPath = &o.ClustersOut
	}
	if o.set["snapshot"] {
		cfg.SnapshotPath = &o.Snapshot
	}
	if o.set["db"] {
		cfg.DBPath = &o.DBPath
	}
	if o.set["mode"] {
		cfg.Mode = &o.Mode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList splits a comma-separated flag value, dropping blanks. An
// all-blank value yields an empty, non-nil slice so validation rejects it.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// failureKind names the class of a fatal error for the exit message.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ais.ErrConfig):
		return "invalid configuration"
	case errors.Is(err, ais.ErrDecode):
		return "decode failure"
	case errors.Is(err, ais.ErrSchema):
		return "schema error"
	case errors.Is(err, ais.ErrEmptyDataset):
		return "empty dataset"
	case errors.Is(err, ais.ErrIO):
		return "io failure"
	case errors.Is(err, context.Canceled):
		return "interrupted"
	default:
		return "error"
	}
}

func printSummary(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "\n=== aismap summary ===\n")
	fmt.Fprintf(w, "Source:           %s (%s)\n", res.Source, res.Encoding)
	fmt.Fprintf(w, "Rows:             %d read, %d kept, %d skipped\n",
		res.Report.Total, res.Report.Kept, res.Report.Skipped())
	fmt.Fprintf(w, "  null:           %d\n", res.Report.NullSkipped)
	fmt.Fprintf(w, "  non-numeric:    %d\n", res.Report.TypeSkipped)
	fmt.Fprintf(w, "  non-finite:     %d\n", res.Report.NonFiniteSkipped)
	fmt.Fprintf(w, "Map centre:       %.6f, %.6f\n", res.CenterLat, res.CenterLon)
	if res.PointMarkers > 0 {
		fmt.Fprintf(w, "Point markers:    %d\n", res.PointMarkers)
	}
	if res.Assignments != nil {
		fmt.Fprintf(w, "Clusters:         %d (%d noise positions)\n", res.Clusters, res.Noise)
		fmt.Fprintf(w, "Cluster markers:  %d\n", res.ClusterMarkers)
		for _, cs := range res.Summaries {
			fmt.Fprintf(w, "  %-14s  %5d positions  centre %.5f, %.5f  radius %.3g %s\n",
				render.LayerName(cs.Label), cs.Count, cs.CentroidLat, cs.CentroidLon,
				units.ConvertDistance(cs.RadiusMeters, res.DistanceUnits), res.DistanceUnits)
		}
	}
	for _, a := range res.Artifacts {
		fmt.Fprintf(w, "Wrote:            %s\n", a)
	}
	if res.RunID != "" {
		fmt.Fprintf(w, "Run ID:           %s\n", res.RunID)
	}
	fmt.Fprintf(w, "Elapsed:          %s\n", res.Elapsed.Round(time.Millisecond))
}
