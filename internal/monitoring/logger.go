// Package monitoring holds the pipeline's diagnostic loggers.
//
// Stage code logs through Logf (run summaries, encoding attempts, counts)
// and Debugf (per-row detail). Both are package variables so the CLI can
// turn on verbose output and tests can capture or mute them.
package monitoring

import (
	"fmt"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf receives per-row detail. It is a no-op until SetDebugLogger
// installs a sink, so large inputs do not flood the log by default.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebugLogger replaces the debug logger. Passing nil disables debug output.
func SetDebugLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = f
}

// Recorder collects formatted log lines. Install its Logf with SetLogger
// to assert on diagnostics in tests.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Logf formats and stores one line.
func (r *Recorder) Logf(format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

// Lines returns a copy of everything recorded so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}
