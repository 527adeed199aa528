package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/aismap/internal/ais"
)

// naTokens are the cell spellings read as missing values.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// errEmptyInput mirrors the message readers give for a file with no header.
var errEmptyInput = errors.New("no columns to parse from file")

// parseTable reads delimited text into a typed table. Rows longer than the
// header are a parse error; shorter rows are padded with nulls.
func parseTable(text string, comma rune) (*ais.Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1 // width is checked against the header below

	header, err := r.Read()
	if err == io.EOF {
		return nil, errEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	t := &ais.Table{Columns: columnNames(header)}
	width := len(t.Columns)

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > width {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("error tokenizing data: expected %d fields in line %d, saw %d", width, line, len(rec))
		}

		row := make([]ais.Value, width)
		for i := range row {
			if i < len(rec) {
				row[i] = parseCell(rec[i])
			} else {
				row[i] = ais.Null()
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// columnNames fills blank header cells and de-duplicates repeated names
// with numeric suffixes.
func columnNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	next := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			n := next[base]
			if n == 0 {
				n = 1
			}
			for used[fmt.Sprintf("%s.%d", base, n)] {
				n++
			}
			name = fmt.Sprintf("%s.%d", base, n)
			next[base] = n + 1
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// parseCell types a single cell: missing, integer, float, or text.
func parseCell(raw string) ais.Value {
	s := strings.TrimSpace(raw)
	if _, ok := naTokens[s]; ok {
		return ais.Null()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ais.IntValue(i)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return ais.FloatValue(f)
	}
	// Out of range literals still read as numbers (saturated to ±Inf).
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
		return ais.FloatValue(f)
	}
	return ais.StringValue(raw)
}
