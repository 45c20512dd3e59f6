package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".", cfg.Project.Root)
	assert.Contains(t, cfg.Scan.Extensions, ".ts")
	assert.Contains(t, cfg.Scan.Extensions, ".vue")
	assert.Contains(t, cfg.Scan.ExcludedDirs, "node_modules")
	assert.Equal(t, "/api/", cfg.Scan.Marker)
	assert.Equal(t, "console", cfg.Output.Format)
	assert.True(t, cfg.Output.Colors)
	assert.Equal(t, "apiscout.db", cfg.Storage.DBPath)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiscout.yml")
	content := `project:
  root: ./web
scan:
  marker: /rest/
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./web", cfg.Project.Root)
	assert.Equal(t, "/rest/", cfg.Scan.Marker)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "apiscout.db", cfg.Storage.DBPath, "unset sections keep their defaults")
	assert.Contains(t, cfg.Scan.Extensions, ".tsx")
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiscout.yml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  marker: /rest/\n"), 0644))

	t.Setenv("APISCOUT_MARKER", "/v2/")
	t.Setenv("APISCOUT_DB", "override.db")
	t.Setenv("APISCOUT_WORKERS", "8")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/v2/", cfg.Scan.Marker)
	assert.Equal(t, "override.db", cfg.Storage.DBPath)
	assert.Equal(t, 8, cfg.Scan.Workers)
}

func TestLoadConfig_IgnoresMalformedWorkerOverride(t *testing.T) {
	t.Setenv("APISCOUT_WORKERS", "many")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Scan.Workers)
}

func TestLoadConfig_FindsConventionalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".apiscout.yml"), []byte("scan:\n  marker: /internal-api/\n"), 0644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/internal-api/", cfg.Scan.Marker)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"empty root":         func(c *Config) { c.Project.Root = "" },
		"empty marker":       func(c *Config) { c.Scan.Marker = "" },
		"negative workers":   func(c *Config) { c.Scan.Workers = -1 },
		"dotless extension":  func(c *Config) { c.Scan.Extensions = []string{"ts"} },
		"unsupported format": func(c *Config) { c.Output.Format = "xml" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGenerateConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "apiscout.yml")
	require.NoError(t, GenerateConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Scan.Marker, cfg.Scan.Marker)
	assert.Equal(t, DefaultConfig().Output.Format, cfg.Output.Format)
}
