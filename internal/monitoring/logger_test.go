package monitoring

import (
	"strings"
	"sync"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// Now set to nil and verify it doesn't call our logger
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestDebugf_DefaultIsNoOp(t *testing.T) {
	if Debugf == nil {
		t.Fatal("Debugf should not be nil by default")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Debugf panicked: %v", r)
		}
	}()
	Debugf("row %d skipped", 3)
}

func TestSetDebugLogger(t *testing.T) {
	original := Debugf
	defer func() { Debugf = original }()

	var rec Recorder
	SetDebugLogger(rec.Logf)
	Debugf("[clean] row %d: %s", 7, "null lat")

	lines := rec.Lines()
	if len(lines) != 1 || lines[0] != "[clean] row 7: null lat" {
		t.Errorf("unexpected debug lines: %q", lines)
	}

	SetDebugLogger(nil)
	Debugf("dropped")
	if got := len(rec.Lines()); got != 1 {
		t.Errorf("expected debug output to stop after SetDebugLogger(nil), have %d lines", got)
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	var rec Recorder
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec.Logf("branch %d", i)
		}(i)
	}
	wg.Wait()

	lines := rec.Lines()
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "branch ") {
			t.Errorf("unexpected line %q", l)
		}
	}
}
