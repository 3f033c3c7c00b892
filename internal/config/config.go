package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources       []Source `yaml:"sources"`
	Fetch         Fetch    `yaml:"fetch"`
	Curation      Curation `yaml:"curation"`
	Scoring       Scoring  `yaml:"scoring"`
	Feed          Feed     `yaml:"feed"`
	Enrich        Enrich   `yaml:"enrich"`
	Output        Output   `yaml:"output"`
	Logging       Logging  `yaml:"logging"`
	WhitelistPath string   `yaml:"whitelist_path"`
}

// Source configures one upstream competition listing. BaseURL, Keywords,
// Limit, IDPrefix, Category and Tags only apply to some adapter types.
type Source struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	URL      string   `yaml:"url"`
	Enabled  *bool    `yaml:"enabled"`
	Trust    float64  `yaml:"trust"`
	BaseURL  string   `yaml:"base_url"`
	Keywords []string `yaml:"keywords"`
	Limit    int      `yaml:"limit"`
	IDPrefix string   `yaml:"id_prefix"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
}

// IsEnabled reports whether the source should be fetched. Sources are
// enabled unless the config says otherwise.
func (s *Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

type Fetch struct {
	TimeoutSeconds       int  `yaml:"timeout_seconds"`
	RequireSourceSuccess bool `yaml:"require_source_success"`
}

type Curation struct {
	MaxExpiredDays      int      `yaml:"max_expired_days"`
	TitleRejectPatterns []string `yaml:"title_reject_patterns"`
}

type Scoring struct {
	StatusOngoing    float64     `yaml:"status_ongoing"`
	StatusOpen       float64     `yaml:"status_open"`
	DeadlineSoon     float64     `yaml:"deadline_soon"`
	SoonWindowDays   int         `yaml:"soon_window_days"`
	OfficialDomain   float64     `yaml:"official_domain"`
	WhitelistDefault float64     `yaml:"whitelist_default"`
	CategoryMatch    float64     `yaml:"category_match"`
	SummaryPresent   float64     `yaml:"summary_present"`
	TagsPresent      float64     `yaml:"tags_present"`
	BonusTiers       []BonusTier `yaml:"bonus_tiers"`
}

// BonusTier maps a minimum prize amount to score points. Tiers are checked
// in order, first match wins.
type BonusTier struct {
	Min    int     `yaml:"min"`
	Points float64 `yaml:"points"`
	Reason string  `yaml:"reason"`
}

type Feed struct {
	Path       string `yaml:"path"`
	PreviewDir string `yaml:"preview_dir"`
	TopN       int    `yaml:"top_n"`
}

type Enrich struct {
	Enabled        bool `yaml:"enabled"`
	MaxFetches     int  `yaml:"max_fetches"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for raceradar.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "raceradar")
}

// DataDir returns the XDG data directory for raceradar.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "raceradar")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/raceradar/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'raceradar init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Fetch: Fetch{
			TimeoutSeconds: 20,
		},
		Curation: Curation{
			MaxExpiredDays: 7,
		},
		Scoring: Scoring{
			StatusOngoing:    30,
			StatusOpen:       20,
			DeadlineSoon:     15,
			SoonWindowDays:   7,
			OfficialDomain:   20,
			WhitelistDefault: 50,
			CategoryMatch:    5,
			SummaryPresent:   4,
			TagsPresent:      3,
			BonusTiers: []BonusTier{
				{Min: 100000, Points: 25, Reason: "bonus-high"},
				{Min: 50000, Points: 18, Reason: "bonus-rich"},
				{Min: 10000, Points: 12, Reason: "has-bonus"},
				{Min: 5000, Points: 7, Reason: "has-bonus"},
			},
		},
		Feed: Feed{
			Path:       "feed.json",
			PreviewDir: "preview",
			TopN:       20,
		},
		Enrich: Enrich{
			Enabled:        true,
			MaxFetches:     10,
			TimeoutSeconds: 15,
		},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// ResolveWhitelistPath finds the whitelist data file. An explicit
// whitelist_path wins; otherwise the file is looked up next to the XDG
// config and in the working directory. An empty result means no file exists
// and the built-in rules apply.
func (c *Config) ResolveWhitelistPath() string {
	if c.WhitelistPath != "" {
		return c.WhitelistPath
	}

	xdg := filepath.Join(ConfigDir(), "whitelist.yaml")
	if _, err := os.Stat(xdg); err == nil {
		return xdg
	}

	if _, err := os.Stat("whitelist.yaml"); err == nil {
		return "whitelist.yaml"
	}

	return ""
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
