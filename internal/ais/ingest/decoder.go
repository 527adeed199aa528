// Package ingest turns a delimited position file of unknown text encoding
// into a typed table.
//
// The decoder walks a fixed, ordered list of candidate encodings and keeps
// the first one under which the file both decodes cleanly and parses into a
// well-formed table. There is no detection heuristic beyond that list.
package ingest

import (
	"fmt"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/fsutil"
	"github.com/banshee-data/aismap/internal/monitoring"
)

// Decoder reads position tables through a FileSystem.
type Decoder struct {
	FS        fsutil.FileSystem
	Encodings []string // candidate order; DefaultEncodings when empty
	Comma     rune     // field delimiter; ',' when zero
}

// DecodeResult is a successfully decoded table and how it was obtained.
type DecodeResult struct {
	Table    *ais.Table
	Encoding string
	Attempts []ais.DecodeAttempt // every attempt made, the last one succeeded
}

// NewDecoder creates a decoder over the OS filesystem.
func NewDecoder(encodings []string) *Decoder {
	return &Decoder{FS: fsutil.OSFileSystem{}, Encodings: encodings}
}

// Decode reads path once and tries each candidate encoding in order,
// stopping at the first success. If every candidate fails the returned
// error is an *ais.DecodeError matching ais.ErrDecode.
func (d *Decoder) Decode(path string) (*DecodeResult, error) {
	fsys := d.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	encodings := d.Encodings
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	comma := d.Comma
	if comma == 0 {
		comma = ','
	}

	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, &ais.DecodeError{Path: path, Err: err}
	}

	attempts := make([]ais.DecodeAttempt, 0, len(encodings))
	for _, enc := range encodings {
		table, err := decodeAs(raw, enc, comma)
		attempts = append(attempts, ais.DecodeAttempt{Encoding: enc, Err: err})
		if err != nil {
			monitoring.Logf("[decode] reading %s with encoding %s failed: %v", path, enc, err)
			continue
		}
		monitoring.Logf("[decode] read %s with encoding %s: %d columns, %d rows",
			path, enc, len(table.Columns), table.Len())
		return &DecodeResult{Table: table, Encoding: enc, Attempts: attempts}, nil
	}

	monitoring.Logf("[decode] no candidate encoding could read %s; check the file encoding or content", path)
	return nil, &ais.DecodeError{Path: path, Attempts: attempts}
}

func decodeAs(raw []byte, enc string, comma rune) (*ais.Table, error) {
	text, err := decodeText(raw, enc)
	if err != nil {
		return nil, err
	}
	table, err := parseTable(text, comma)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return table, nil
}
