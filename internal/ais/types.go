package ais

import (
	"fmt"
	"math"
	"strconv"
)

// Required coordinate columns.
const (
	ColumnLat = "lat"
	ColumnLon = "lon"
)

// NoiseLabel marks an assignment that belongs to no dense region.
const NoiseLabel = -1

// Kind is the dynamic type of a decoded table cell.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is an untyped table cell. Only the field matching Kind is set.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
}

// Null returns the absent value.
func Null() Value { return Value{Kind: KindNull} }

// IntValue wraps an integer cell.
func IntValue(v int64) Value { return Value{Kind: KindInt, Int: v} }

// FloatValue wraps a floating point cell. NaN is stored as Null, matching
// how a missing numeric cell is represented after parsing.
func FloatValue(v float64) Value {
	if math.IsNaN(v) {
		return Null()
	}
	return Value{Kind: KindFloat, Float: v}
}

// StringValue wraps a text cell.
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }

// IsNull reports whether the cell is absent.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsNumeric reports whether the cell was stored as an integer or float.
func (v Value) IsNumeric() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// Float64 coerces a numeric cell to float64. ok is false for Null and
// String cells; text is never parsed here.
func (v Value) Float64() (f float64, ok bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NaN"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return strconv.Quote(v.Str)
	}
}

// Table is a decoded source file: a header and rows aligned to it.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries column name.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Get returns the cell at (row, column name). Unknown columns and out of
// range rows read as Null.
func (t *Table) Get(row int, name string) Value {
	col := t.Index(name)
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return Null()
	}
	return t.Rows[row][col]
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Position is a cleaned coordinate pair. Lat and Lon are finite;
// SourceIndex is the originating data row in the decoded table.
type Position struct {
	Lat         float64
	Lon         float64
	SourceIndex int
}

// Assignment pairs a position with its cluster label. Label is NoiseLabel
// or a dense ordinal starting at 0.
type Assignment struct {
	Position
	Label int
}

// IsNoise reports whether the assignment carries the noise label.
func (a Assignment) IsNoise() bool { return a.Label == NoiseLabel }
