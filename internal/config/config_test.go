package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9191
data:
  base_url: http://example.com/data
  timeout_seconds: 5
session:
  database_path: ./session.db
ranking:
  relevance_threshold: 40
pipeline:
  data_dir: ./data/postprocessed
  feeds:
    - url: https://example.com/rss
      source: Example Wire
      category: tax
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Data.BaseURL != "http://example.com/data" {
		t.Errorf("BaseURL = %q", cfg.Data.BaseURL)
	}
	if cfg.Data.TimeoutSeconds != 5 {
		t.Errorf("TimeoutSeconds = %d, want 5", cfg.Data.TimeoutSeconds)
	}
	if cfg.Ranking.RelevanceThreshold != 40 {
		t.Errorf("RelevanceThreshold = %v, want 40", cfg.Ranking.RelevanceThreshold)
	}
	if len(cfg.Pipeline.Feeds) != 1 || cfg.Pipeline.Feeds[0].Source != "Example Wire" {
		t.Errorf("Feeds = %+v", cfg.Pipeline.Feeds)
	}

	// ./-prefixed paths resolve relative to the config directory.
	want := filepath.Join(dir, "session.db")
	if cfg.Session.DatabasePath != want {
		t.Errorf("DatabasePath = %q, want %q", cfg.Session.DatabasePath, want)
	}
	if cfg.Pipeline.DataDir != filepath.Join(dir, "data/postprocessed") {
		t.Errorf("DataDir = %q", cfg.Pipeline.DataDir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Data.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds default = %d, want 30", cfg.Data.TimeoutSeconds)
	}
	if cfg.Data.Retries != 1 {
		t.Errorf("Retries default = %d, want 1", cfg.Data.Retries)
	}
	if cfg.Ranking.RelevanceThreshold != 30 {
		t.Errorf("RelevanceThreshold default = %v, want 30", cfg.Ranking.RelevanceThreshold)
	}
	if cfg.Ranking.DefaultLimit != 10 {
		t.Errorf("ranking DefaultLimit default = %d, want 10", cfg.Ranking.DefaultLimit)
	}
	if cfg.Search.IndexEnabled {
		t.Error("search index should be disabled by default")
	}
	if cfg.Pipeline.Dimensions != 384 || cfg.Pipeline.MaxTokens != 256 {
		t.Errorf("pipeline defaults = %d/%d", cfg.Pipeline.Dimensions, cfg.Pipeline.MaxTokens)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9000
	cfg.Ranking.RelevanceThreshold = 55
	ApplyDefaults(cfg)

	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Ranking.RelevanceThreshold != 55 {
		t.Errorf("RelevanceThreshold = %v, want 55", cfg.Ranking.RelevanceThreshold)
	}
}
