package enrich

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/eprogressing/race-radar/internal/config"
	"github.com/eprogressing/race-radar/internal/feed"
)

const maxSummaryRunes = 280

// Result holds the outcome of a summary back-fill pass.
type Result struct {
	Enriched int
	Skipped  int
	Failed   int
}

// Enricher back-fills missing summaries by fetching the competition page
// and extracting its readable text. Enrichment is best-effort: any failure
// leaves the record as it was.
type Enricher struct {
	client     *http.Client
	maxFetches int
}

// New creates an enricher from the enrich config section.
func New(cfg config.Enrich) *Enricher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxFetches := cfg.MaxFetches
	if maxFetches <= 0 {
		maxFetches = 10
	}
	return &Enricher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		maxFetches: maxFetches,
	}
}

// Run fills in summaries for records that have none, in place. At most
// maxFetches pages are fetched per run; a domain that failed once is not
// tried again within the same run.
func (e *Enricher) Run(ctx context.Context, records []feed.CompetitionRecord) *Result {
	result := &Result{}
	failedDomains := make(map[string]struct{})
	fetches := 0

	for i := range records {
		if records[i].Summary != "" {
			result.Skipped++
			continue
		}
		if fetches >= e.maxFetches {
			result.Skipped++
			continue
		}

		u, _ := url.Parse(records[i].SourceURL)
		domain := ""
		if u != nil {
			domain = strings.ToLower(u.Host)
		}
		if _, failed := failedDomains[domain]; failed {
			result.Failed++
			continue
		}

		fetches++
		summary, err := e.fetchSummary(ctx, records[i].SourceURL)
		if err != nil || summary == "" {
			result.Failed++
			if domain != "" && err != nil {
				failedDomains[domain] = struct{}{}
				log.Printf("Enrich failed for %s — skipping remaining from %s", records[i].SourceURL, domain)
			}
			continue
		}

		records[i].Summary = summary
		result.Enriched++
		log.Printf("Enriched summary for: %s", records[i].Title)
	}

	if result.Enriched > 0 || result.Failed > 0 {
		log.Printf("Enrich complete: %d enriched, %d failed", result.Enriched, result.Failed)
	}
	return result
}

func (e *Enricher) fetchSummary(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "raceradar/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if len(text) < 40 {
		return "", nil
	}
	return truncate(text), nil
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSummaryRunes {
		return s
	}
	return string(runes[:maxSummaryRunes-1]) + "…"
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
