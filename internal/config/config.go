package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"apiscout/internal/crawler"
	"apiscout/internal/extractor"
)

// Config holds everything a scan needs: where to look, what to admit and
// where results go.
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Scan    ScanConfig    `yaml:"scan"`
	Output  OutputConfig  `yaml:"output"`
	Storage StorageConfig `yaml:"storage"`
}

type ProjectConfig struct {
	// Root is the frontend source tree to analyze.
	Root string `yaml:"root"`
}

type ScanConfig struct {
	// Extensions selects which files are parsed.
	Extensions []string `yaml:"extensions"`

	// ExcludedDirs are directory names skipped during discovery.
	ExcludedDirs []string `yaml:"excluded_dirs"`

	// Marker is the URL substring that admits a call site as an API
	// endpoint.
	Marker string `yaml:"marker"`

	// Workers caps parallel file analysis. Zero selects one worker
	// per CPU.
	Workers int `yaml:"workers"`
}

type OutputConfig struct {
	// Format is "console" or "json".
	Format string `yaml:"format"`

	// Colors toggles ANSI colors in console output.
	Colors bool `yaml:"colors"`

	// DocsDir is where generated markdown documentation is written.
	DocsDir string `yaml:"docs_dir"`
}

type StorageConfig struct {
	// DBPath is the SQLite database holding the endpoint surface.
	DBPath string `yaml:"db_path"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Root: ".",
		},
		Scan: ScanConfig{
			Extensions:   append([]string(nil), crawler.DefaultExtensions...),
			ExcludedDirs: append([]string(nil), crawler.DefaultExcludedDirs...),
			Marker:       extractor.DefaultAPIMarker,
			Workers:      0,
		},
		Output: OutputConfig{
			Format:  "console",
			Colors:  true,
			DocsDir: "docs",
		},
		Storage: StorageConfig{
			DBPath: "apiscout.db",
		},
	}
}

// LoadConfig reads configuration from path, or from the first config file
// found in conventional locations when path is empty, falling back to
// defaults. Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	// A .env next to the binary is a convenience for local use.
	_ = godotenv.Load()

	if path == "" {
		path = findConfigFile()
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if root := os.Getenv("APISCOUT_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if marker := os.Getenv("APISCOUT_MARKER"); marker != "" {
		cfg.Scan.Marker = marker
	}
	if format := os.Getenv("APISCOUT_FORMAT"); format != "" {
		cfg.Output.Format = format
	}
	if dbPath := os.Getenv("APISCOUT_DB"); dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if workers := os.Getenv("APISCOUT_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			cfg.Scan.Workers = n
		}
	}
}

// findConfigFile looks for config files in conventional locations.
func findConfigFile() string {
	possiblePaths := []string{
		".apiscout.yml",
		".apiscout.yaml",
		"apiscout.yml",
		"apiscout.yaml",
		filepath.Join(".config", "apiscout.yml"),
		filepath.Join(".config", "apiscout.yaml"),
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Project.Root == "" {
		return fmt.Errorf("project root must not be empty")
	}
	if c.Scan.Marker == "" {
		return fmt.Errorf("scan marker must not be empty")
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	for _, ext := range c.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	switch c.Output.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid output format: %s (valid: console, json)", c.Output.Format)
	}
	return nil
}

// SaveConfig writes the configuration to path as YAML.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateConfig writes a config file populated with the defaults.
func GenerateConfig(path string) error {
	return DefaultConfig().SaveConfig(path)
}
