package ais

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal error kinds. Every one aborts the run; callers match them with
// errors.Is.
var (
	// ErrDecode means no candidate encoding produced a well-formed table.
	ErrDecode = errors.New("decode failure")
	// ErrSchema means a required coordinate column is absent.
	ErrSchema = errors.New("schema error")
	// ErrEmptyDataset means cleaning left no positions to work with.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrIO means an artifact could not be persisted.
	ErrIO = errors.New("io failure")
	// ErrConfig means the run configuration is unusable.
	ErrConfig = errors.New("invalid configuration")
)

// DecodeAttempt records one encoding tried by the decoder.
type DecodeAttempt struct {
	Encoding string
	Err      error // nil on the successful attempt
}

// DecodeError is returned when every candidate encoding failed, or when
// the source could not be read at all (Attempts is then empty).
type DecodeError struct {
	Path     string
	Attempts []DecodeAttempt
	Err      error // read failure, if any
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failure: %s: %v", e.Path, e.Err)
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Encoding, a.Err))
	}
	return fmt.Sprintf("decode failure: %s: no candidate encoding could read the file (%s)",
		e.Path, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrDecode and the underlying read error.
func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDecode, e.Err}
	}
	return []error{ErrDecode}
}

// SchemaError names the required columns missing from a table.
type SchemaError struct {
	Missing []string
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: missing required column(s) %s (have %s)",
		quoteAll(e.Missing), quoteAll(e.Columns))
}

// Unwrap lets errors.Is match ErrSchema.
func (e *SchemaError) Unwrap() error { return ErrSchema }

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
