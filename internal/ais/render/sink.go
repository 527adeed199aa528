package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/fsutil"
	"github.com/banshee-data/aismap/internal/monitoring"
)

// Format returns the artifact format implied by path's extension, or ""
// if the extension is not supported.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "html"
	case ".png":
		return "png"
	case ".svg":
		return "svg"
	case ".pdf":
		return "pdf"
	}
	return ""
}

// Save renders the canvas and writes it to path in one write. The format
// follows the extension. Render and write failures wrap ais.ErrIO.
func Save(fsys fsutil.FileSystem, c *Canvas, path string) error {
	format := Format(path)
	if format == "" {
		return fmt.Errorf("%w: unsupported map format %q", ais.ErrConfig, filepath.Ext(path))
	}

	var data []byte
	switch format {
	case "html":
		var buf bytes.Buffer
		if err := writeHTML(c, &buf); err != nil {
			return fmt.Errorf("%w: render %s: %w", ais.ErrIO, path, err)
		}
		data = buf.Bytes()
	default:
		out, err := writeSnapshot(c, format)
		if err != nil {
			return fmt.Errorf("%w: render %s: %w", ais.ErrIO, path, err)
		}
		data = out
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: create %s: %w", ais.ErrIO, dir, err)
		}
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ais.ErrIO, path, err)
	}

	monitoring.Logf("[render] wrote %s (%s, %d markers, %d bytes)", path, format, len(c.Markers), len(data))
	return nil
}
