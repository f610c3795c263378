package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
query: machine learning
country: Germany
data_dir: /tmp/harvest
fetch:
  timeout: 20s
  requests_per_second: 4
filters:
  keywords:
    - machine learning
  locations:
    - berlin
sources:
  greenhouse:
    - name: Databricks
      slug: databricks
      domain: databricks.com
      enabled: true
  amazon:
    enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fetch.Timeout != 20*time.Second {
		t.Errorf("Fetch.Timeout = %v, want 20s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.RequestsPerSecond != 4 {
		t.Errorf("Fetch.RequestsPerSecond = %v, want 4", cfg.Fetch.RequestsPerSecond)
	}
	if len(cfg.Sources.Greenhouse) != 1 || cfg.Sources.Greenhouse[0].Slug != "databricks" {
		t.Errorf("Sources.Greenhouse = %+v", cfg.Sources.Greenhouse)
	}
	if !cfg.Sources.Amazon.Enabled || cfg.Sources.Amazon.CountryCode != "DEU" {
		t.Errorf("Sources.Amazon = %+v, want enabled with DEU default", cfg.Sources.Amazon)
	}
	if got := cfg.EnabledSourceCount(); got != 2 {
		t.Errorf("EnabledSourceCount = %d, want 2", got)
	}
}

func TestLoad_DefaultFilters(t *testing.T) {
	path := writeConfig(t, `
sources:
  amazon:
    enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Filters.Keywords) == 0 {
		t.Error("expected default keywords to be applied")
	}
	if len(cfg.Filters.Locations) == 0 {
		t.Error("expected default locations to be applied")
	}
	if cfg.Country != "Germany" {
		t.Errorf("Country = %q, want default Germany", cfg.Country)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want default data", cfg.DataDir)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "query: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_NoEnabledSources(t *testing.T) {
	path := writeConfig(t, `
sources:
  greenhouse:
    - name: Databricks
      slug: databricks
      enabled: false
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error when no source is enabled")
	}
}

func TestLoad_BoardWithoutSlug(t *testing.T) {
	path := writeConfig(t, `
sources:
  greenhouse:
    - name: Databricks
      enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for enabled board without slug")
	}
}
