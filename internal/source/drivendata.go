package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/eprogressing/race-radar/internal/config"
)

const drivendataDefaultURL = "https://www.drivendata.org/competitions/"

// DrivenData scrapes the DrivenData competition listing page.
type DrivenData struct {
	name   string
	url    string
	client *http.Client
}

// NewDrivenData creates a DrivenData adapter.
func NewDrivenData(cfg config.Source) *DrivenData {
	name := cfg.Name
	if name == "" {
		name = "DrivenData"
	}
	url := cfg.URL
	if url == "" {
		url = drivendataDefaultURL
	}
	return &DrivenData{name: name, url: url, client: &http.Client{}}
}

// Name returns the configured source name.
func (s *DrivenData) Name() string { return s.name }

// Fetch extracts competitions from the listing page links.
func (s *DrivenData) Fetch(ctx context.Context) ([]Record, error) {
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
	doc.Find(`a[href^="/competitions/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			return
		}
		slug := competitionSlug(href)
		if slug == "" || seen[slug] {
			return
		}
		seen[slug] = true
		records = append(records, Record{
			SourceKey:  "drivendata",
			LocalID:    slug,
			Title:      title,
			Category:   []string{"数据竞赛"},
			Tags:       []string{"DrivenData"},
			SourceName: s.name,
			SourceURL:  "https://www.drivendata.org" + href,
			Summary:    "DrivenData competition",
		})
	})
	return records, nil
}

// competitionSlug pulls the competition identifier out of a listing href
// like /competitions/my-challenge/.
func competitionSlug(href string) string {
	trimmed := strings.Trim(href, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return trimmed
}
