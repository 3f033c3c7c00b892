package curate

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/eprogressing/race-radar/internal/feed"
)

// Rule rejects titles matching a pattern. Rules are checked in order and
// the first hit wins.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Built-in reject rules for the noise the organizer sites actually emit:
// ICP filing boilerplate scraped off page footers, titles that are nothing
// but a date, and leftover sample entries.
var builtinRules = []Rule{
	{"icp-filing", regexp.MustCompile(`(?i)icp备\d+号|公网安备|备案号`)},
	{"bare-date", regexp.MustCompile(`^\s*\d{4}(\s*[-/.]\s*\d{1,2}(\s*[-/.]\s*\d{1,2})?|\s*年(\s*\d{1,2}\s*月(\s*\d{1,2}\s*日)?)?)?\s*$`)},
	{"sample-marker", regexp.MustCompile(`示例`)},
}

// Sanitizer screens titles against the reject rules.
type Sanitizer struct {
	rules []Rule
}

// NewSanitizer builds a sanitizer from the built-in rules plus any extra
// configured patterns. A bad extra pattern is skipped with a log line.
func NewSanitizer(extraPatterns []string) *Sanitizer {
	rules := append([]Rule(nil), builtinRules...)
	for i, p := range extraPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			log.Printf("Skipping bad title reject pattern %q: %v", p, err)
			continue
		}
		rules = append(rules, Rule{Name: fmt.Sprintf("custom-%d", i+1), Pattern: re})
	}
	return &Sanitizer{rules: rules}
}

// Check returns the name of the first rule rejecting the record, if any.
// The sample marker also applies to the source name, so seeded demo data
// never reaches the published feed.
func (s *Sanitizer) Check(rec *feed.CompetitionRecord) (string, bool) {
	for _, rule := range s.rules {
		if rule.Pattern.MatchString(rec.Title) {
			return rule.Name, true
		}
	}
	if strings.Contains(rec.SourceName, "示例") {
		return "sample-marker", true
	}
	return "", false
}
