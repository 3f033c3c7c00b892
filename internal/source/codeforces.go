package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/eprogressing/race-radar/internal/config"
)

const codeforcesDefaultURL = "https://codeforces.com/api/contest.list"

// Codeforces fetches upcoming and running contests from the Codeforces API.
type Codeforces struct {
	name   string
	url    string
	client *http.Client
}

// NewCodeforces creates a Codeforces adapter.
func NewCodeforces(cfg config.Source) *Codeforces {
	name := cfg.Name
	if name == "" {
		name = "Codeforces"
	}
	url := cfg.URL
	if url == "" {
		url = codeforcesDefaultURL
	}
	return &Codeforces{name: name, url: url, client: &http.Client{}}
}

// Name returns the configured source name.
func (s *Codeforces) Name() string { return s.name }

// Fetch lists contests in the BEFORE and CODING phases.
func (s *Codeforces) Fetch(ctx context.Context) ([]Record, error) {
	resp, err := get(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Status string `json:"status"`
		Result []struct {
			ID               int    `json:"id"`
			Name             string `json:"name"`
			Phase            string `json:"phase"`
			StartTimeSeconds int64  `json:"startTimeSeconds"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result.Status != "OK" {
		return nil, fmt.Errorf("API status %q", result.Status)
	}

	var records []Record
	for _, c := range result.Result {
		if c.Phase != "BEFORE" && c.Phase != "CODING" {
			continue
		}
		rec := Record{
			SourceKey:  "codeforces",
			LocalID:    strconv.Itoa(c.ID),
			Title:      c.Name,
			Ongoing:    c.Phase == "CODING",
			Category:   []string{"编程竞赛"},
			Tags:       []string{"Codeforces"},
			SourceName: s.name,
			SourceURL:  fmt.Sprintf("https://codeforces.com/contests/%d", c.ID),
			Summary:    "Codeforces contest",
		}
		if c.StartTimeSeconds > 0 {
			rec.Deadline = time.Unix(c.StartTimeSeconds, 0).UTC().Format("2006-01-02")
		}
		records = append(records, rec)
	}
	return records, nil
}
