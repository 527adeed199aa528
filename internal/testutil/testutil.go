// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/aismap/internal/monitoring"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// MuteLogs captures the monitoring loggers for the duration of the test
// and returns the recorder holding the Logf output.
func MuteLogs(t testing.TB) *monitoring.Recorder {
	t.Helper()
	rec := &monitoring.Recorder{}
	origLog, origDebug := monitoring.Logf, monitoring.Debugf
	monitoring.SetLogger(rec.Logf)
	monitoring.SetDebugLogger(nil)
	t.Cleanup(func() {
		monitoring.Logf = origLog
		monitoring.Debugf = origDebug
	})
	return rec
}

// WriteFile writes data under dir and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Blob describes a square grid of n vessel reports around a centre.
type Blob struct {
	Lat, Lon float64
	N        int
	Spacing  float64 // degrees between neighbouring reports
}

// VesselCSV renders blobs as an AIS-style CSV with mmsi, name, lat and lon
// columns. extra rows are appended verbatim after the generated ones.
func VesselCSV(blobs []Blob, extra ...string) string {
	var b strings.Builder
	b.WriteString("mmsi,name,lat,lon\n")
	mmsi := 413000000
	for _, bl := range blobs {
		side := 1
		for side*side < bl.N {
			side++
		}
		for i := 0; i < bl.N; i++ {
			mmsi++
			lat := bl.Lat + float64(i%side)*bl.Spacing
			lon := bl.Lon + float64(i/side)*bl.Spacing
			fmt.Fprintf(&b, "%d,vessel-%d,%.6f,%.6f\n", mmsi, mmsi, lat, lon)
		}
	}
	for _, row := range extra {
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}
