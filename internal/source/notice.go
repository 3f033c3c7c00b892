package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/eprogressing/race-radar/internal/config"
)

const defaultNoticeLimit = 20

var defaultNoticeKeywords = []string{"通知", "公告"}

// NoticeBoard scrapes announcement links off an organizer site. Chinese
// competition organizers publish everything as 通知/公告 pages, so anchors
// whose text carries such a keyword are treated as listings.
type NoticeBoard struct {
	name     string
	url      string
	baseURL  string
	keywords []string
	limit    int
	prefix   string
	category string
	tags     []string
	client   *http.Client
}

// NewNoticeBoard creates a notice-board adapter.
func NewNoticeBoard(cfg config.Source) *NoticeBoard {
	s := &NoticeBoard{
		name:     cfg.Name,
		url:      cfg.URL,
		baseURL:  cfg.BaseURL,
		keywords: cfg.Keywords,
		limit:    cfg.Limit,
		prefix:   cfg.IDPrefix,
		category: cfg.Category,
		tags:     cfg.Tags,
		client:   &http.Client{},
	}
	if s.baseURL == "" {
		s.baseURL = s.url
	}
	if len(s.keywords) == 0 {
		s.keywords = defaultNoticeKeywords
	}
	if s.limit <= 0 {
		s.limit = defaultNoticeLimit
	}
	if s.prefix == "" {
		s.prefix = "notice"
	}
	if s.category == "" {
		s.category = "学术竞赛"
	}
	return s
}

// Name returns the configured source name.
func (s *NoticeBoard) Name() string { return s.name }

// Fetch collects up to limit announcement links in page order.
func (s *NoticeBoard) Fetch(ctx context.Context) ([]Record, error) {
	resp, err := get(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	seen := make(map[string]bool)
	var records []Record
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		title := strings.TrimSpace(sel.Text())
		if title == "" || !s.matchesKeyword(title) {
			return true
		}

		full := href
		if !strings.HasPrefix(href, "http") {
			full = strings.TrimRight(s.baseURL, "/") + "/" + strings.TrimLeft(href, "/")
		}
		slug := pathStem(full)
		if slug == "" || seen[slug] {
			return true
		}
		seen[slug] = true

		records = append(records, Record{
			SourceKey:  s.prefix,
			LocalID:    slug,
			Title:      title,
			Category:   []string{s.category},
			Tags:       append([]string(nil), s.tags...),
			SourceName: s.name,
			SourceURL:  full,
		})
		return len(records) < s.limit
	})
	return records, nil
}

func (s *NoticeBoard) matchesKeyword(text string) bool {
	for _, k := range s.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// pathStem returns the last path element without its extension, the stable
// part of a notice URL.
func pathStem(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
