// Package cluster groups vessel positions into dense regions with DBSCAN
// over standardized coordinates.
package cluster

import (
	"fmt"
	"math"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/monitoring"
)

const (
	// DefaultEps is the neighbourhood radius in standardized units.
	DefaultEps = 0.1
	// DefaultMinSamples is the neighbourhood size, self included, that
	// makes a point core.
	DefaultMinSamples = 10
)

// Params configures DBSCAN.
type Params struct {
	Eps        float64
	MinSamples int
}

// DefaultParams returns the pipeline's default clustering parameters.
func DefaultParams() Params {
	return Params{Eps: DefaultEps, MinSamples: DefaultMinSamples}
}

// Validate rejects parameters DBSCAN cannot run with.
func (p Params) Validate() error {
	if !(p.Eps > 0) || math.IsInf(p.Eps, 0) {
		return fmt.Errorf("%w: eps must be a positive finite number, got %v", ais.ErrConfig, p.Eps)
	}
	if p.MinSamples < 1 {
		return fmt.Errorf("%w: min_samples must be at least 1, got %d", ais.ErrConfig, p.MinSamples)
	}
	return nil
}

// Clusterer abstracts the clustering implementation so the pipeline can
// be exercised with alternative strategies.
type Clusterer interface {
	// Cluster returns one assignment per position, in input order.
	Cluster(positions []ais.Position) ([]ais.Assignment, error)

	// GetParams returns the current clustering parameters.
	GetParams() Params

	// SetParams updates the clustering parameters.
	SetParams(params Params)
}

// DBSCANClusterer implements Clusterer using DBSCAN on z-scored
// (lat, lon) pairs.
type DBSCANClusterer struct {
	params Params
}

// NewDBSCANClusterer creates a new DBSCAN clusterer with the specified parameters.
func NewDBSCANClusterer(eps float64, minSamples int) *DBSCANClusterer {
	return &DBSCANClusterer{params: Params{Eps: eps, MinSamples: minSamples}}
}

// NewDefaultDBSCANClusterer creates a DBSCAN clusterer with default parameters.
func NewDefaultDBSCANClusterer() *DBSCANClusterer {
	p := DefaultParams()
	return NewDBSCANClusterer(p.Eps, p.MinSamples)
}

// Cluster standardizes positions and labels them. The result is
// deterministic for a given input order and parameters.
func (c *DBSCANClusterer) Cluster(positions []ais.Position) ([]ais.Assignment, error) {
	if err := c.params.Validate(); err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, nil
	}

	labels := DBSCAN(Standardize(positions), c.params)

	out := make([]ais.Assignment, len(positions))
	clusters, noise := 0, 0
	for i, p := range positions {
		out[i] = ais.Assignment{Position: p, Label: labels[i]}
		if labels[i] == ais.NoiseLabel {
			noise++
		} else if labels[i]+1 > clusters {
			clusters = labels[i] + 1
		}
	}
	monitoring.Logf("[cluster] eps=%g min_samples=%d: %d positions, %d clusters, %d noise",
		c.params.Eps, c.params.MinSamples, len(positions), clusters, noise)
	return out, nil
}

// GetParams returns the current clustering parameters.
func (c *DBSCANClusterer) GetParams() Params {
	return c.params
}

// SetParams updates the clustering parameters.
func (c *DBSCANClusterer) SetParams(params Params) {
	c.params = params
}

// Verify at compile time that *DBSCANClusterer implements Clusterer.
var _ Clusterer = (*DBSCANClusterer)(nil)
