package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
)

// DefaultDebounce collapses the burst of events an editor emits on save
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher reports changes to a set of source files. The parent
// directories are watched so editors that save by rename keep triggering.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	files    map[string]bool
	dirs     map[string]bool
	debounce time.Duration
	timer    *time.Timer
	changed  []string
	callback func([]string)
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: debounce,
	}, nil
}

// Watch replaces the watched set. callback receives the changed files once
// the debounce interval passed without further events.
func (fw *FileWatcher) Watch(files []string, callback func([]string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.removeAll()
	fw.callback = callback

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		fw.files[absPath] = true

		dir := filepath.Dir(absPath)
		if fw.dirs[dir] {
			continue
		}
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		fw.dirs[dir] = true
	}

	return nil
}

// Files lists the watched files
func (fw *FileWatcher) Files() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return lo.Keys(fw.files)
}

// Run dispatches events until ctx is done or the watcher is closed
func (fw *FileWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.handleFileChange(event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// handleFileChange records a change and restarts the debounce timer
func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	absPath, err := filepath.Abs(filePath)
	if err != nil || !fw.files[absPath] || fw.callback == nil {
		return
	}

	if !lo.Contains(fw.changed, absPath) {
		fw.changed = append(fw.changed, absPath)
	}

	if fw.timer != nil {
		fw.timer.Stop()
	}
	callback := fw.callback
	fw.timer = time.AfterFunc(fw.debounce, func() {
		fw.mu.Lock()
		changed := fw.changed
		fw.changed = nil
		fw.mu.Unlock()

		if len(changed) > 0 {
			callback(changed)
		}
	})
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}

// RemoveAll removes all watched files
func (fw *FileWatcher) RemoveAll() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.removeAll()
}

func (fw *FileWatcher) removeAll() {
	for dir := range fw.dirs {
		if err := fw.watcher.Remove(dir); err != nil {
			log.Printf("failed to stop watching %s: %v", dir, err)
		}
	}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.files = make(map[string]bool)
	fw.dirs = make(map[string]bool)
	fw.changed = nil
}
