package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eprogressing/race-radar/internal/config"
)

const userAgent = "raceradar/1.0"

// Record is the raw shape every adapter hands to the pipeline. Whatever a
// site returns stays inside its adapter; only these fields leave it.
type Record struct {
	SourceKey   string // id prefix, e.g. "codeforces"
	LocalID     string // stable id within the source
	Title       string
	Deadline    string // YYYY-MM-DD or empty when the source gives none
	Ongoing     bool   // source says the competition is running right now
	BonusAmount int
	BonusText   string
	Category    []string
	Tags        []string
	SourceName  string
	SourceURL   string
	Summary     string
}

// Source fetches raw competition records from one upstream site.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Record, error)
}

// New builds the adapter for a source config entry.
func New(cfg config.Source) (Source, error) {
	switch cfg.Type {
	case "codeforces":
		return NewCodeforces(cfg), nil
	case "atcoder":
		return NewAtCoder(cfg), nil
	case "drivendata":
		return NewDrivenData(cfg), nil
	case "notice":
		return NewNoticeBoard(cfg), nil
	case "rss":
		return NewRSSFeed(cfg), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}

// get issues a GET request bound to ctx and fails on any non-200 response.
func get(ctx context.Context, client *http.Client, rawurl string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}
