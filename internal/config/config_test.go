package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	fastq, ok := cfg.Categories["fastq"]
	if !ok {
		t.Fatal("default config missing fastq category")
	}
	if fastq.Glob != "*.fastq.gz" {
		t.Errorf("fastq glob = %q, want %q", fastq.Glob, "*.fastq.gz")
	}
	if fastq.PairLimit != 2 {
		t.Errorf("fastq pair_limit = %d, want 2", fastq.PairLimit)
	}

	fasta, ok := cfg.Categories["fasta"]
	if !ok {
		t.Fatal("default config missing fasta category")
	}
	if fasta.PairLimit != 1 {
		t.Errorf("fasta pair_limit = %d, want 1", fasta.PairLimit)
	}

	if len(cfg.Roots) != 2 {
		t.Fatalf("default roots = %d, want 2", len(cfg.Roots))
	}
	if !cfg.History.Enabled {
		t.Error("history should be enabled by default")
	}
}

// TestDefaultConfigValid verifies the defaults pass their own validation
func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `categories:
  fastq:
    extension: fastq
    glob: "*.fastq.gz"
    pair_limit: 2
roots:
  - path: /data/sequences
    patterns:
      fastq: ["*/*", "archive/*/*"]
history:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if len(cfg.Categories) != 1 {
		t.Errorf("categories = %d, want 1", len(cfg.Categories))
	}
	if len(cfg.Roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(cfg.Roots))
	}
	if cfg.Roots[0].Path != "/data/sequences" {
		t.Errorf("root path = %q, want %q", cfg.Roots[0].Path, "/data/sequences")
	}
	if got := cfg.Roots[0].Patterns["fastq"]; len(got) != 2 {
		t.Errorf("fastq patterns = %v, want two entries", got)
	}
	if cfg.History.Enabled {
		t.Error("history.enabled = true, want false from file")
	}
	// DBPath was omitted, default should survive
	if cfg.History.DBPath == "" {
		t.Error("history.db_path should keep its default when omitted")
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}

	if len(cfg.Roots) != 2 {
		t.Errorf("roots = %d, want 2 (default)", len(cfg.Roots))
	}
}

// TestLoadConfigInvalidYAML tests error handling for malformed YAML
func TestLoadConfigInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `roots: [this is not
  valid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("LoadConfig() should error on malformed YAML")
	}
}

// TestValidateErrors exercises the validation failure cases
func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no categories", func(c *Config) { c.Categories = nil }},
		{"empty extension", func(c *Config) {
			c.Categories["fastq"] = Category{Extension: "", Glob: "*.fastq.gz", PairLimit: 2}
		}},
		{"empty glob", func(c *Config) {
			c.Categories["fastq"] = Category{Extension: "fastq", Glob: "", PairLimit: 2}
		}},
		{"zero pair limit", func(c *Config) {
			c.Categories["fastq"] = Category{Extension: "fastq", Glob: "*.fastq.gz", PairLimit: 0}
		}},
		{"no roots", func(c *Config) { c.Roots = nil }},
		{"empty root path", func(c *Config) { c.Roots[0].Path = "" }},
		{"unknown pattern category", func(c *Config) {
			c.Roots[0].Patterns = map[string][]string{"bam": {"*/*"}}
		}},
		{"history without db path", func(c *Config) {
			c.History = HistoryConfig{Enabled: true, DBPath: ""}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error for %s", tc.name)
			}
		})
	}
}
