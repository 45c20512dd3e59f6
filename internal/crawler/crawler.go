package crawler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrDirectoryNotFound reports a scan root that does not exist. It is the
// only fatal condition of discovery and surfaces before any file is read.
var ErrDirectoryNotFound = errors.New("directory not found")

// DefaultExtensions are the frontend source extensions considered for analysis.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".vue"}

// DefaultExcludedDirs are dependency and build output directories that never
// hold first-party frontend source.
var DefaultExcludedDirs = []string{"node_modules", ".git", "dist", "build", "out", "coverage", "vendor", ".next", ".nuxt"}

// Crawler scans a directory tree for frontend source files.
type Crawler struct {
	extensions map[string]bool
	excluded   map[string]bool
}

// NewCrawler creates a crawler for the given extensions and excluded
// directory names. Empty slices select the defaults.
func NewCrawler(extensions, excluded []string) *Crawler {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if len(excluded) == 0 {
		excluded = DefaultExcludedDirs
	}

	c := &Crawler{
		extensions: make(map[string]bool, len(extensions)),
		excluded:   make(map[string]bool, len(excluded)),
	}
	for _, ext := range extensions {
		c.extensions[strings.ToLower(ext)] = true
	}
	for _, dir := range excluded {
		c.excluded[dir] = true
	}
	return c
}

// Matches reports whether path carries one of the crawler's source extensions.
func (c *Crawler) Matches(path string) bool {
	return c.extensions[strings.ToLower(filepath.Ext(path))]
}

// ExcludedDir reports whether a directory name is excluded from scanning.
// Hidden directories are always excluded.
func (c *Crawler) ExcludedDir(name string) bool {
	return c.excluded[name] || strings.HasPrefix(name, ".")
}

// ScanProject walks the root directory and streams every matching file path.
// It uses a callback to avoid buffering large trees in memory.
func (c *Crawler) ScanProject(root string, onFile func(path string)) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDirectoryNotFound, root)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip dependency/build directories and hidden directories,
		// but never the root itself.
		if d.IsDir() {
			if path == root {
				return nil
			}
			if c.ExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !c.Matches(d.Name()) {
			return nil
		}

		onFile(path)
		return nil
	})
}

// Collect scans root and returns the matching files sorted lexicographically,
// the deterministic order the aggregation stage folds results in.
func (c *Crawler) Collect(root string) ([]string, error) {
	var files []string
	err := c.ScanProject(root, func(path string) {
		files = append(files, path)
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
