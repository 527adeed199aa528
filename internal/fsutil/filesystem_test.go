package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestOSFileSystem_ReadFile(t *testing.T) {
	fsys := OSFileSystem{}

	data, err := fsys.ReadFile("filesystem.go")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected filesystem.go to have content")
	}

	if _, err := fsys.ReadFile("nonexistent_file_xyz.go"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file err = %v, want fs.ErrNotExist", err)
	}
}

func TestOSFileSystem_WriteFileReplacesAtomically(t *testing.T) {
	fsys := OSFileSystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "ais_map.html")

	if err := fsys.WriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := fsys.WriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the artifact in %s, found %d entries", dir, len(entries))
	}
}

func TestOSFileSystem_WriteFileMissingDir(t *testing.T) {
	fsys := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "missing", "ais_map.html")

	if err := fsys.WriteFile(path, []byte("x"), 0644); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("lat,lon\n1,2\n")
	if err := mfs.WriteFile("/data/input.csv", testData, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := mfs.ReadFile("/data/input.csv")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}
	if mfs.Reads != 1 {
		t.Errorf("Reads = %d, want 1", mfs.Reads)
	}

	// Mutating the returned slice must not affect the stored file.
	data[0] = 'X'
	again, _ := mfs.ReadFile("/data/input.csv")
	if again[0] != 'l' {
		t.Error("ReadFile returned shared backing storage")
	}
}

func TestMemoryFileSystem_ReadMissing(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.ReadFile("nope.csv")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_WriteErr(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.WriteErr = errors.New("disk full")

	err := mfs.WriteFile("out.html", []byte("x"), 0644)
	if err == nil {
		t.Fatal("expected injected write error")
	}
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) || pathErr.Path != "out.html" {
		t.Errorf("expected *fs.PathError for out.html, got %v", err)
	}
	if mfs.Exists("out.html") {
		t.Error("failed write must not create the file")
	}
}

func TestMemoryFileSystem_StatAndDirs(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("/out/maps", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if !mfs.Exists("/out") || !mfs.Exists("/out/maps") {
		t.Error("expected parent and child directories to exist")
	}

	info, err := mfs.Stat("/out/maps")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory")
	}

	_ = mfs.WriteFile("/out/maps/a.html", []byte("abc"), 0600)
	info, err = mfs.Stat("/out/maps/a.html")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 3 || info.Mode() != 0600 || info.Name() != "a.html" {
		t.Errorf("unexpected file info: size=%d mode=%v name=%s", info.Size(), info.Mode(), info.Name())
	}

	if _, err := mfs.Stat("/out/none"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_Files(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("b.html", nil, 0644)
	_ = mfs.WriteFile("a.html", nil, 0644)

	files := mfs.Files()
	sort.Strings(files)
	if len(files) != 2 || files[0] != "a.html" || files[1] != "b.html" {
		t.Errorf("unexpected files: %v", files)
	}
}
