package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Sources) < 5 {
		t.Errorf("expected at least 5 sources, got %d", len(cfg.Sources))
	}

	if cfg.Fetch.TimeoutSeconds != 20 {
		t.Errorf("expected timeout 20, got %d", cfg.Fetch.TimeoutSeconds)
	}

	if cfg.Curation.MaxExpiredDays != 7 {
		t.Errorf("expected max_expired_days 7, got %d", cfg.Curation.MaxExpiredDays)
	}

	if len(cfg.Scoring.BonusTiers) != 4 {
		t.Errorf("expected 4 bonus tiers, got %d", len(cfg.Scoring.BonusTiers))
	}

	if cfg.Feed.Path != "feed.json" {
		t.Errorf("expected feed path 'feed.json', got %q", cfg.Feed.Path)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
sources:
  - name: Codeforces
    type: codeforces
    url: https://codeforces.com/api/contest.list
feed:
  path: /tmp/feed.json
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Feed.Path != "/tmp/feed.json" {
		t.Errorf("expected overridden feed path, got %q", cfg.Feed.Path)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Fetch.TimeoutSeconds != 20 {
		t.Errorf("expected default timeout, got %d", cfg.Fetch.TimeoutSeconds)
	}
	if cfg.Scoring.StatusOngoing != 30 {
		t.Errorf("expected default status_ongoing weight, got %v", cfg.Scoring.StatusOngoing)
	}
	if cfg.Feed.TopN != 20 {
		t.Errorf("expected default top_n, got %d", cfg.Feed.TopN)
	}
}

func TestSourceEnabledDefaultsTrue(t *testing.T) {
	data := []byte(`
sources:
  - name: A
    type: codeforces
    url: https://example.com/a
  - name: B
    type: atcoder
    url: https://example.com/b
    enabled: false
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	if !cfg.Sources[0].IsEnabled() {
		t.Error("expected source without enabled key to default to enabled")
	}
	if cfg.Sources[1].IsEnabled() {
		t.Error("expected enabled: false to disable the source")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Sources) == 0 {
		t.Error("expected sources to be populated from file")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}

func TestResolveWhitelistPathExplicit(t *testing.T) {
	cfg := &Config{WhitelistPath: "/data/whitelist.yaml"}
	if got := cfg.ResolveWhitelistPath(); got != "/data/whitelist.yaml" {
		t.Errorf("expected explicit path, got %q", got)
	}
}
