package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/eprogressing/race-radar/internal/config"
)

const maxPerFeed = 20

var titleDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// RSSFeed reads competition announcements from an RSS/Atom feed.
type RSSFeed struct {
	name     string
	url      string
	prefix   string
	category string
	tags     []string
	parser   *gofeed.Parser
}

// NewRSSFeed creates an RSS adapter.
func NewRSSFeed(cfg config.Source) *RSSFeed {
	s := &RSSFeed{
		name:     cfg.Name,
		url:      cfg.URL,
		prefix:   cfg.IDPrefix,
		category: cfg.Category,
		tags:     cfg.Tags,
		parser:   gofeed.NewParser(),
	}
	if s.prefix == "" {
		s.prefix = "rss"
	}
	return s
}

// Name returns the configured source name.
func (s *RSSFeed) Name() string { return s.name }

// Fetch parses the feed and returns its first entries. Publication dates do
// not become deadlines; a deadline is only picked up when the title itself
// carries an ISO date.
func (s *RSSFeed) Fetch(ctx context.Context) ([]Record, error) {
	f, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	var records []Record
	for _, item := range f.Items {
		if len(records) >= maxPerFeed {
			break
		}

		link := item.Link
		if link == "" {
			link = item.GUID
		}
		title := strings.TrimSpace(item.Title)
		if link == "" || title == "" {
			continue
		}

		localID := item.GUID
		if localID == "" {
			localID = link
		}

		var summary string
		if item.Description != "" {
			summary = stripHTML(item.Description)
		} else if item.Content != "" {
			summary = stripHTML(item.Content)
		}

		records = append(records, Record{
			SourceKey:  s.prefix,
			LocalID:    shortHash(localID),
			Title:      title,
			Deadline:   titleDatePattern.FindString(title),
			Category:   categoryOrNil(s.category),
			Tags:       append([]string(nil), s.tags...),
			SourceName: s.name,
			SourceURL:  link,
			Summary:    summary,
		})
	}
	return records, nil
}

func categoryOrNil(c string) []string {
	if c == "" {
		return nil
	}
	return []string{c}
}

// shortHash derives a compact stable id from a guid or link.
func shortHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

func stripHTML(text string) string {
	// Simple HTML tag removal
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := result.String()
	// Decode common entities
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	// Normalize whitespace
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
