package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReportsChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "part.stl")
	other := filepath.Join(dir, "other.stl")
	for _, f := range []string{file, other} {
		if err := os.WriteFile(f, []byte("solid a\nendsolid a\n"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	fw, err := NewFileWatcher(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	defer fw.Close()

	changes := make(chan []string, 4)
	if err := fw.Watch([]string{file}, func(files []string) { changes <- files }); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Run(ctx)

	if err := os.WriteFile(other, []byte("solid b\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(file, []byte("solid c\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case files := <-changes:
		absFile, _ := filepath.Abs(file)
		if len(files) != 1 || files[0] != absFile {
			t.Errorf("Watch failed: expected [%s], got %v", absFile, files)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	fw, err := NewFileWatcher(DefaultDebounce)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	defer fw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := fw.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWatchReplacesFiles(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher(DefaultDebounce)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	defer fw.Close()

	a, b := filepath.Join(dir, "a.stl"), filepath.Join(dir, "b.stl")
	if err := fw.Watch([]string{a, b}, func([]string) {}); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if got := len(fw.Files()); got != 2 {
		t.Errorf("expected 2 files, got %d", got)
	}

	if err := fw.Watch([]string{a}, func([]string) {}); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if got := len(fw.Files()); got != 1 {
		t.Errorf("expected 1 file, got %d", got)
	}

	fw.RemoveAll()
	if got := len(fw.Files()); got != 0 {
		t.Errorf("expected no files, got %d", got)
	}
}
