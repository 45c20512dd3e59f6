package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"apiscout/internal/crawler"
)

// DebounceDelay is how long the watcher waits after the last event before
// invoking the handler. Editors fire several events per save.
const DebounceDelay = 500 * time.Millisecond

// FileWatcher watches a frontend source tree and reports changed files.
// Events are filtered through the same extension and directory rules the
// crawler uses, so the handler only ever sees analyzable source.
type FileWatcher struct {
	watcher     *fsnotify.Watcher
	crawler     *crawler.Crawler
	debouncer   *debouncer

	mutex       sync.Mutex
	watchedDirs map[string]bool
}

// FileChangeEvent is one raw change observed on disk.
type FileChangeEvent struct {
	Path      string
	Operation string
	Timestamp time.Time
}

// FileChangeHandler receives the debounced batch of changed file paths.
type FileChangeHandler func(changed []string) error

// NewFileWatcher creates a watcher that filters events through c. A nil
// crawler selects the default extensions and exclusions.
func NewFileWatcher(c *crawler.Crawler) (*FileWatcher, error) {
	if c == nil {
		c = crawler.NewCrawler(nil, nil)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		watcher:     fsWatcher,
		crawler:     c,
		watchedDirs: make(map[string]bool),
		debouncer:   newDebouncer(DebounceDelay),
	}, nil
}

// Watch registers every directory under root and starts dispatching
// change batches to handler until Close is called.
func (fw *FileWatcher) Watch(root string, handler FileChangeHandler) error {
	if err := fw.addTree(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	go fw.eventLoop(handler)
	return nil
}

func (fw *FileWatcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && fw.crawler.ExcludedDir(info.Name()) {
			return filepath.SkipDir
		}

		fw.mutex.Lock()
		defer fw.mutex.Unlock()
		if !fw.watchedDirs[path] {
			if err := fw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to add directory %s: %w", path, err)
			}
			fw.watchedDirs[path] = true
		}
		return nil
	})
}

func (fw *FileWatcher) eventLoop(handler FileChangeHandler) {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event, handler)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fmt.Printf("⚠️  File watcher error: %v\n", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event, handler FileChangeHandler) {
	// A created directory needs its own watch before events inside it
	// can be seen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !fw.crawler.ExcludedDir(filepath.Base(event.Name)) {
				_ = fw.addTree(event.Name)
			}
			return
		}
	}

	if !fw.crawler.Matches(event.Name) || isEditorArtifact(event.Name) {
		return
	}

	fw.debouncer.add(FileChangeEvent{
		Path:      event.Name,
		Operation: opString(event.Op),
		Timestamp: time.Now(),
	}, handler)
}

// WatchedDirs returns the directories currently registered with the watcher.
func (fw *FileWatcher) WatchedDirs() []string {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	dirs := make([]string, 0, len(fw.watchedDirs))
	for dir := range fw.watchedDirs {
		dirs = append(dirs, dir)
	}
	return dirs
}

// Close stops the debouncer and releases the underlying watcher.
func (fw *FileWatcher) Close() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

// isEditorArtifact reports paths editors write alongside real saves,
// such as swap and backup files.
func isEditorArtifact(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, suffix := range []string{"~", ".tmp", ".swp", ".swo"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func opString(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "CREATE"
	case op&fsnotify.Write != 0:
		return "WRITE"
	case op&fsnotify.Remove != 0:
		return "REMOVE"
	case op&fsnotify.Rename != 0:
		return "RENAME"
	case op&fsnotify.Chmod != 0:
		return "CHMOD"
	}
	return "UNKNOWN"
}
