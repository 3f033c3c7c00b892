package score

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eprogressing/race-radar/internal/feed"
)

//go:embed whitelist.yaml
var DefaultWhitelistYAML []byte

// Rule levels.
const (
	LevelNational      = "National"
	LevelInternational = "International"
)

// Rule marks a known competition brand. Pattern is a case-insensitive
// regexp matched against title, summary and source name. Weight zero means
// the configured default weight applies.
type Rule struct {
	Pattern string  `yaml:"pattern"`
	Weight  float64 `yaml:"weight"`
	Level   string  `yaml:"level"`

	re *regexp.Regexp
}

// Whitelist is the curated rule set: recognized competitions plus the
// domains considered official organizer sites.
type Whitelist struct {
	Rules           []Rule   `yaml:"whitelist"`
	OfficialDomains []string `yaml:"official_domains"`
}

// LoadWhitelist reads the whitelist data file. An empty path or a missing
// file falls back to the built-in rules.
func LoadWhitelist(path string) (*Whitelist, error) {
	if path == "" {
		return parseWhitelist(DefaultWhitelistYAML)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("Whitelist %s not found, using built-in rules", path)
		return parseWhitelist(DefaultWhitelistYAML)
	}
	if err != nil {
		return nil, fmt.Errorf("reading whitelist: %w", err)
	}
	return parseWhitelist(data)
}

func parseWhitelist(data []byte) (*Whitelist, error) {
	var wl Whitelist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("parsing whitelist: %w", err)
	}

	compiled := wl.Rules[:0]
	for _, rule := range wl.Rules {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			log.Printf("Skipping whitelist rule with bad pattern %q: %v", rule.Pattern, err)
			continue
		}
		rule.re = re
		compiled = append(compiled, rule)
	}
	wl.Rules = compiled

	for i, d := range wl.OfficialDomains {
		wl.OfficialDomains[i] = strings.ToLower(d)
	}

	return &wl, nil
}

// Match returns the first rule matching the record text, if any.
func (w *Whitelist) Match(rec *feed.CompetitionRecord) (*Rule, bool) {
	text := searchText(rec)
	for i := range w.Rules {
		if w.Rules[i].re.MatchString(text) {
			return &w.Rules[i], true
		}
	}
	return nil, false
}

// IsOfficial reports whether the record URL belongs to an official
// organizer domain.
func (w *Whitelist) IsOfficial(rec *feed.CompetitionRecord) bool {
	u := strings.ToLower(rec.SourceURL)
	for _, d := range w.OfficialDomains {
		if strings.Contains(u, d) {
			return true
		}
	}
	return false
}

// searchText is the haystack every keyword and rule check runs against.
func searchText(rec *feed.CompetitionRecord) string {
	return strings.ToLower(rec.Title + " " + rec.Summary + " " + rec.SourceName)
}
