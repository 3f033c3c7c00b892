package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/eprogressing/race-radar/internal/config"
)

const atcoderDefaultURL = "https://kenkoooo.com/atcoder/resources/contests.json"

// AtCoder fetches upcoming and running contests from the AtCoder Problems
// contest dump.
type AtCoder struct {
	name   string
	url    string
	client *http.Client
	now    func() time.Time
}

// NewAtCoder creates an AtCoder adapter.
func NewAtCoder(cfg config.Source) *AtCoder {
	name := cfg.Name
	if name == "" {
		name = "AtCoder"
	}
	url := cfg.URL
	if url == "" {
		url = atcoderDefaultURL
	}
	return &AtCoder{name: name, url: url, client: &http.Client{}, now: time.Now}
}

// Name returns the configured source name.
func (s *AtCoder) Name() string { return s.name }

// Fetch lists contests that have not started yet or are running.
func (s *AtCoder) Fetch(ctx context.Context) ([]Record, error) {
	resp, err := get(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var contests []struct {
		ID               string `json:"id"`
		Title            string `json:"title"`
		StartEpochSecond int64  `json:"start_epoch_second"`
		DurationSecond   int64  `json:"duration_second"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&contests); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	nowTS := s.now().Unix()
	var records []Record
	for _, c := range contests {
		upcoming := c.StartEpochSecond > nowTS
		running := c.StartEpochSecond <= nowTS && nowTS < c.StartEpochSecond+c.DurationSecond
		if !upcoming && !running {
			continue
		}
		rec := Record{
			SourceKey:  "atcoder",
			LocalID:    c.ID,
			Title:      c.Title,
			Ongoing:    running,
			Category:   []string{"编程竞赛"},
			Tags:       []string{"AtCoder"},
			SourceName: s.name,
			SourceURL:  fmt.Sprintf("https://atcoder.jp/contests/%s", c.ID),
			Summary:    "AtCoder contest",
		}
		if c.StartEpochSecond > 0 {
			rec.Deadline = time.Unix(c.StartEpochSecond, 0).UTC().Format("2006-01-02")
		}
		records = append(records, rec)
	}
	return records, nil
}
