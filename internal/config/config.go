// Package config provides configuration loading and structs for the Insight Hub server and pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Session  SessionConfig  `yaml:"session"`
	Search   SearchConfig   `yaml:"search"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DataConfig holds settings for fetching the four JSON artifacts.
type DataConfig struct {
	// BaseURL is where articles.json, kpis.json, trends.json and
	// insights.json are served from.
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Retries        int    `yaml:"retries"`
	// WatchDirectory, when set, is the local pipeline output directory;
	// JSON writes there trigger a snapshot refresh.
	WatchDirectory string `yaml:"watch_directory"`
}

// SessionConfig holds session persistence settings. An empty DatabasePath
// keeps bookmarks and alert status in memory only.
type SessionConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// SearchConfig holds full-text search settings. The index is off by
// default; the filter endpoint scans linearly and needs no index for
// collections in the hundreds-to-low-thousands range.
type SearchConfig struct {
	IndexEnabled bool `yaml:"index_enabled"`
	DefaultLimit int  `yaml:"default_limit"`
	MaxLimit     int  `yaml:"max_limit"`
}

// RankingConfig holds per-KPI article ranking settings.
type RankingConfig struct {
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
	DefaultLimit       int     `yaml:"default_limit"`
	MaxLimit           int     `yaml:"max_limit"`
}

// FeedConfig is one RSS feed to ingest alongside the CSV drops.
type FeedConfig struct {
	URL      string `yaml:"url"`
	Source   string `yaml:"source"`
	Category string `yaml:"category"`
}

// PipelineConfig holds batch processing settings.
type PipelineConfig struct {
	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"`
	// ModelPath points at a MiniLM ONNX model; when empty, KPI relevance
	// falls back to keyword-only scoring.
	ModelPath  string       `yaml:"model_path"`
	Dimensions int          `yaml:"dimensions"`
	MaxTokens  int          `yaml:"max_tokens"`
	Feeds      []FeedConfig `yaml:"feeds"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Session.DatabasePath = expandPath(cfg.Session.DatabasePath, configDir)
	cfg.Data.WatchDirectory = expandPath(cfg.Data.WatchDirectory, configDir)
	cfg.Pipeline.DataDir = expandPath(cfg.Pipeline.DataDir, configDir)
	cfg.Pipeline.OutputDir = expandPath(cfg.Pipeline.OutputDir, configDir)
	cfg.Pipeline.ModelPath = expandPath(cfg.Pipeline.ModelPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
