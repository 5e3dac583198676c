// Package config loads and validates nastools configuration.
//
// Configuration describes where sequence files live on the NAS: the file
// categories that can be requested (fastq, fasta) and the search roots with
// the glob patterns that locate each category's files beneath them. Defaults
// reproduce the conventional NAS layout, so the tool works with no config
// file present.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Category describes one retrievable file category.
type Category struct {
	// Extension is the bare extension token used when deriving SEQ IDs
	// from file names (e.g. "fastq", "fasta"; no dot)
	Extension string `yaml:"extension"`

	// Glob is the file-name glob matched during scanning
	// (e.g. "*.fastq.gz")
	Glob string `yaml:"glob"`

	// PairLimit is the number of files selected per SEQ ID before a
	// duplicate-copy warning is raised; 2 for paired reads, 1 otherwise
	PairLimit int `yaml:"pair_limit"`
}

// SearchRoot is a top-level NAS directory paired with the relative glob
// patterns that locate each category's files beneath it. A root with no
// pattern for a category simply contributes nothing to that category.
type SearchRoot struct {
	Path     string              `yaml:"path"`
	Patterns map[string][]string `yaml:"patterns"`
}

// HistoryConfig controls the run-history database.
type HistoryConfig struct {
	// Enabled records each retrieval run when true
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the SQLite history database
	DBPath string `yaml:"db_path"`
}

// Config represents nastools configuration options
type Config struct {
	Categories map[string]Category `yaml:"categories"`
	Roots      []SearchRoot        `yaml:"roots"`
	History    HistoryConfig       `yaml:"history"`
}

// DefaultConfig returns a Config describing the conventional NAS layout:
// raw reads under raw_sequence_data/<run>/<flowcell>, assemblies under
// processed_sequence_data/<year>/<run>/BestAssemblies.
func DefaultConfig() *Config {
	nasDir := filepath.Join("/mnt", "nas2")

	return &Config{
		Categories: map[string]Category{
			"fastq": {Extension: "fastq", Glob: "*.fastq.gz", PairLimit: 2},
			"fasta": {Extension: "fasta", Glob: "*.fasta", PairLimit: 1},
		},
		Roots: []SearchRoot{
			{
				Path:     filepath.Join(nasDir, "raw_sequence_data"),
				Patterns: map[string][]string{"fastq": {"*/*"}},
			},
			{
				Path:     filepath.Join(nasDir, "processed_sequence_data"),
				Patterns: map[string][]string{"fasta": {"*/*/BestAssemblies"}},
			},
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(".nastools", "history.db"),
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
// Sections omitted from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(fileCfg.Categories) > 0 {
		cfg.Categories = fileCfg.Categories
	}
	if len(fileCfg.Roots) > 0 {
		cfg.Roots = fileCfg.Roots
	}

	// Detect whether the history section was present at all before
	// overriding defaults with zero values
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["history"]; exists {
			cfg.History.Enabled = fileCfg.History.Enabled
			if fileCfg.History.DBPath != "" {
				cfg.History.DBPath = fileCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .nastools/config.yaml in the
// specified directory, falling back to defaults when absent.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".nastools", "config.yaml"))
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("no file categories configured")
	}

	for name, cat := range c.Categories {
		if cat.Extension == "" {
			return fmt.Errorf("category %q: extension cannot be empty", name)
		}
		if cat.Glob == "" {
			return fmt.Errorf("category %q: glob cannot be empty", name)
		}
		if cat.PairLimit < 1 {
			return fmt.Errorf("category %q: pair_limit must be >= 1, got %d", name, cat.PairLimit)
		}
	}

	if len(c.Roots) == 0 {
		return fmt.Errorf("no search roots configured")
	}

	for i, root := range c.Roots {
		if root.Path == "" {
			return fmt.Errorf("root %d: path cannot be empty", i)
		}
		for category := range root.Patterns {
			if _, ok := c.Categories[category]; !ok {
				return fmt.Errorf("root %s: patterns reference unknown category %q", root.Path, category)
			}
		}
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}

// CategoryNames returns the configured category names; useful for CLI
// validation messages.
func (c *Config) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	return names
}
