package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCrawler_Collect(t *testing.T) {
	root := t.TempDir()

	// 1. Lay out a small frontend tree
	writeFile(t, filepath.Join(root, "src", "api.ts"), "export {}")
	writeFile(t, filepath.Join(root, "src", "App.tsx"), "export {}")
	writeFile(t, filepath.Join(root, "src", "legacy.js"), "")
	writeFile(t, filepath.Join(root, "src", "Widget.vue"), "<template/>")
	writeFile(t, filepath.Join(root, "README.md"), "# readme")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "")
	writeFile(t, filepath.Join(root, "dist", "bundle.js"), "")
	writeFile(t, filepath.Join(root, ".cache", "tmp.ts"), "")

	c := NewCrawler(nil, nil)
	files, err := c.Collect(root)
	require.NoError(t, err)

	// 2. Only first-party source files survive
	names := make([]string, 0, len(files))
	for _, f := range files {
		rel, relErr := filepath.Rel(root, f)
		require.NoError(t, relErr)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"src/App.tsx", "src/Widget.vue", "src/api.ts", "src/legacy.js"}, names,
		"dependency, build and hidden directories must be excluded and output sorted")
}

func TestCrawler_MissingRoot(t *testing.T) {
	c := NewCrawler(nil, nil)

	_, err := c.Collect(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDirectoryNotFound)
}

func TestCrawler_RootIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "index.ts")
	writeFile(t, file, "export {}")

	c := NewCrawler(nil, nil)
	_, err := c.Collect(file)
	assert.ErrorIs(t, err, ErrDirectoryNotFound)
}

func TestCrawler_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), "")
	writeFile(t, filepath.Join(root, "page.svelte"), "")

	c := NewCrawler([]string{".svelte"}, nil)
	files, err := c.Collect(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "page.svelte", filepath.Base(files[0]))
}

func TestCrawler_Matches(t *testing.T) {
	c := NewCrawler(nil, nil)

	assert.True(t, c.Matches("src/api.ts"))
	assert.True(t, c.Matches("src/API.TS"), "extension match is case-insensitive")
	assert.True(t, c.Matches("component.vue"))
	assert.False(t, c.Matches("readme.md"))
	assert.False(t, c.Matches("styles.css"))
}

func TestCrawler_ExcludedDir(t *testing.T) {
	c := NewCrawler(nil, nil)

	assert.True(t, c.ExcludedDir("node_modules"))
	assert.True(t, c.ExcludedDir("dist"))
	assert.True(t, c.ExcludedDir(".git"), "hidden directories are always excluded")
	assert.False(t, c.ExcludedDir("src"))
	assert.False(t, c.ExcludedDir("components"))
}
