package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/ais/cluster"
	"github.com/banshee-data/aismap/internal/ais/ingest"
	"github.com/banshee-data/aismap/internal/ais/render"
	"github.com/banshee-data/aismap/internal/units"
)

// DefaultConfigPath is the path to the canonical pipeline defaults file.
const DefaultConfigPath = "config/aismap.defaults.json"

// maxFileSize caps config files at 1 MiB.
const maxFileSize = 1 * 1024 * 1024

// Run modes.
const (
	ModeAll      = "all"
	ModePoints   = "points"
	ModeClusters = "clusters"
)

// Defaults used when a field is omitted.
const (
	DefaultFilePath       = "xiuchuan.csv"
	DefaultDelimiter      = ","
	DefaultPointMapPath   = "ais_map.html"
	DefaultClusterMapPath = "ais_clusters.html"
	MaxZoom               = 22
)

// PipelineConfig is the run configuration. Nil fields fall back to the
// defaults returned by the Get* methods, so partial files are safe.
type PipelineConfig struct {
	// Input
	FilePath           *string  `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	CandidateEncodings []string `json:"candidate_encodings,omitempty" yaml:"candidate_encodings,omitempty"`
	Delimiter          *string  `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// Clustering
	Eps        *float64 `json:"eps,omitempty" yaml:"eps,omitempty"`
	MinSamples *int     `json:"min_samples,omitempty" yaml:"min_samples,omitempty"`

	// Rendering
	Palette       []string `json:"palette,omitempty" yaml:"palette,omitempty"`
	Zoom          *int     `json:"zoom,omitempty" yaml:"zoom,omitempty"`
	DistanceUnits *string  `json:"distance_units,omitempty" yaml:"distance_units,omitempty"` // cluster extents in logs and summaries
	AssetsHost    *string  `json:"assets_host,omitempty" yaml:"assets_host,omitempty"`       // echarts.min.js location for HTML maps

	// Outputs
	PointMapPath   *string `json:"point_map_path,omitempty" yaml:"point_map_path,omitempty"`
	ClusterMapPath *string `json:"cluster_map_path,omitempty" yaml:"cluster_map_path,omitempty"`
	SnapshotPath   *string `json:"snapshot_path,omitempty" yaml:"snapshot_path,omitempty"` // "" disables
	DBPath         *string `json:"db_path,omitempty" yaml:"db_path,omitempty"`             // "" disables

	Mode *string `json:"mode,omitempty" yaml:"mode,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPipelineConfig returns a PipelineConfig with every field unset.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// DefaultPipelineConfig returns a PipelineConfig with every field set to
// its default.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		FilePath:           ptrString(DefaultFilePath),
		CandidateEncodings: append([]string(nil), ingest.DefaultEncodings...),
		Delimiter:          ptrString(DefaultDelimiter),
		Eps:                ptrFloat64(cluster.DefaultEps),
		MinSamples:         ptrInt(cluster.DefaultMinSamples),
		Palette:            render.DefaultPalette(),
		Zoom:               ptrInt(render.DefaultZoom),
		DistanceUnits:      ptrString(units.Meters),
		AssetsHost:         ptrString(render.DefaultAssetsHost),
		PointMapPath:       ptrString(DefaultPointMapPath),
		ClusterMapPath:     ptrString(DefaultClusterMapPath),
		SnapshotPath:       ptrString(""),
		DBPath:             ptrString(""),
		Mode:               ptrString(ModeAll),
	}
}

// LoadPipelineConfig loads a PipelineConfig from a .json, .yaml or .yml
// file no larger than 1 MiB, then validates it.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: config file must have .json, .yaml or .yml extension, got %q", ais.ErrConfig, ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat config file: %w", ais.ErrConfig, err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("%w: config file too large: %d bytes (max %d)", ais.ErrConfig, fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ais.ErrConfig, err)
	}

	cfg := EmptyPipelineConfig()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse config %s: %w", ais.ErrConfig, ext[1:], err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repository
// root. Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *PipelineConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/ais/pipeline/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadPipelineConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that every set field is usable. Errors wrap ais.ErrConfig.
func (c *PipelineConfig) Validate() error {
	if c.FilePath != nil && strings.TrimSpace(*c.FilePath) == "" {
		return fmt.Errorf("%w: file_path must not be empty", ais.ErrConfig)
	}

	if c.CandidateEncodings != nil {
		if len(c.CandidateEncodings) == 0 {
			return fmt.Errorf("%w: candidate_encodings must list at least one encoding", ais.ErrConfig)
		}
		for _, name := range c.CandidateEncodings {
			if !ingest.ValidEncoding(name) {
				return fmt.Errorf("%w: unknown encoding %q in candidate_encodings", ais.ErrConfig, name)
			}
		}
	}

	if c.Delimiter != nil {
		d := *c.Delimiter
		r, size := utf8.DecodeRuneInString(d)
		if size == 0 || size != len(d) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			return fmt.Errorf("%w: delimiter must be a single character other than a quote or newline, got %q", ais.ErrConfig, d)
		}
	}

	if c.Eps != nil && (!(*c.Eps > 0) || math.IsInf(*c.Eps, 0)) {
		return fmt.Errorf("%w: eps must be a positive finite number, got %v", ais.ErrConfig, *c.Eps)
	}
	if c.MinSamples != nil && *c.MinSamples < 1 {
		return fmt.Errorf("%w: min_samples must be at least 1, got %d", ais.ErrConfig, *c.MinSamples)
	}

	if c.Palette != nil {
		if len(c.Palette) == 0 {
			return fmt.Errorf("%w: palette must list at least one colour", ais.ErrConfig)
		}
		for _, name := range c.Palette {
			if _, err := render.ParseColor(name); err != nil {
				return fmt.Errorf("%w: palette: %w", ais.ErrConfig, err)
			}
		}
	}

	if c.DistanceUnits != nil && !units.IsValid(*c.DistanceUnits) {
		return fmt.Errorf("%w: distance_units must be one of %s, got %q", ais.ErrConfig, units.GetValidUnitsString(), *c.DistanceUnits)
	}

	if c.AssetsHost != nil && !strings.HasSuffix(*c.AssetsHost, "/") {
		return fmt.Errorf("%w: assets_host must be a URL or directory ending in /, got %q", ais.ErrConfig, *c.AssetsHost)
	}

	if c.Zoom != nil && (*c.Zoom < 0 || *c.Zoom > MaxZoom) {
		return fmt.Errorf("%w: zoom must be between 0 and %d, got %d", ais.ErrConfig, MaxZoom, *c.Zoom)
	}

	for key, p := range map[string]*string{
		"point_map_path":   c.PointMapPath,
		"cluster_map_path": c.ClusterMapPath,
	} {
		if p != nil && render.Format(*p) == "" {
			return fmt.Errorf("%w: %s %q must end in .html, .htm, .png, .svg or .pdf", ais.ErrConfig, key, *p)
		}
	}
	if c.SnapshotPath != nil && *c.SnapshotPath != "" && render.Format(*c.SnapshotPath) == "" {
		return fmt.Errorf("%w: snapshot_path %q must end in .png, .svg, .pdf or .html", ais.ErrConfig, *c.SnapshotPath)
	}

	if c.Mode != nil {
		switch *c.Mode {
		case ModeAll, ModePoints, ModeClusters:
		default:
			return fmt.Errorf("%w: mode must be one of %s, %s, %s, got %q", ais.ErrConfig, ModeAll, ModePoints, ModeClusters, *c.Mode)
		}
	}

	return nil
}

// GetFilePath returns the file_path value or the default.
func (c *PipelineConfig) GetFilePath() string {
	if c.FilePath == nil {
		return DefaultFilePath
	}
	return *c.FilePath
}

// GetCandidateEncodings returns the candidate_encodings value or the default.
func (c *PipelineConfig) GetCandidateEncodings() []string {
	if c.CandidateEncodings == nil {
		return append([]string(nil), ingest.DefaultEncodings...)
	}
	return c.CandidateEncodings
}

// GetDelimiter returns the delimiter as a rune, or ','.
func (c *PipelineConfig) GetDelimiter() rune {
	if c.Delimiter == nil || *c.Delimiter == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(*c.Delimiter)
	return r
}

// GetEps returns the eps value or the default.
func (c *PipelineConfig) GetEps() float64 {
	if c.Eps == nil {
		return cluster.DefaultEps
	}
	return *c.Eps
}

// GetMinSamples returns the min_samples value or the default.
func (c *PipelineConfig) GetMinSamples() int {
	if c.MinSamples == nil {
		return cluster.DefaultMinSamples
	}
	return *c.MinSamples
}

// GetPalette returns the palette value or the default.
func (c *PipelineConfig) GetPalette() render.Palette {
	if c.Palette == nil {
		return render.DefaultPalette()
	}
	return render.Palette(c.Palette)
}

// GetZoom returns the zoom value or the default.
func (c *PipelineConfig) GetZoom() int {
	if c.Zoom == nil {
		return render.DefaultZoom
	}
	return *c.Zoom
}

// GetDistanceUnits returns the distance_units value or metres.
func (c *PipelineConfig) GetDistanceUnits() string {
	if c.DistanceUnits == nil {
		return units.Meters
	}
	return *c.DistanceUnits
}

// GetAssetsHost returns the assets_host value or the go-echarts CDN.
func (c *PipelineConfig) GetAssetsHost() string {
	if c.AssetsHost == nil {
		return render.DefaultAssetsHost
	}
	return *c.AssetsHost
}

// GetPointMapPath returns the point_map_path value or the default.
func (c *PipelineConfig) GetPointMapPath() string {
	if c.PointMapPath == nil {
		return DefaultPointMapPath
	}
	return *c.PointMapPath
}

// GetClusterMapPath returns the cluster_map_path value or the default.
func (c *PipelineConfig) GetClusterMapPath() string {
	if c.ClusterMapPath == nil {
		return DefaultClusterMapPath
	}
	return *c.ClusterMapPath
}

// GetSnapshotPath returns the snapshot_path value; "" means disabled.
func (c *PipelineConfig) GetSnapshotPath() string {
	if c.SnapshotPath == nil {
		return ""
	}
	return *c.SnapshotPath
}

// GetDBPath returns the db_path value; "" means disabled.
func (c *PipelineConfig) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetMode returns the mode value or ModeAll.
func (c *PipelineConfig) GetMode() string {
	if c.Mode == nil || *c.Mode == "" {
		return ModeAll
	}
	return *c.Mode
}
