package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eprogressing/race-radar/internal/config"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Contest Announcements</title>
	<item>
		<title>Registration closes 2026-04-01 for the spring AI cup</title>
		<link>https://example.org/spring-ai-cup</link>
		<guid>spring-ai-cup-2026</guid>
		<description>&lt;p&gt;Sign up &lt;b&gt;now&lt;/b&gt; for the cup.&lt;/p&gt;</description>
	</item>
	<item>
		<title>Hackathon weekend announced</title>
		<link>https://example.org/hackathon</link>
	</item>
	<item>
		<title></title>
		<link>https://example.org/no-title</link>
	</item>
</channel>
</rss>`

func TestRSSFeedFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	s := NewRSSFeed(config.Source{Name: "Contest Feed", URL: srv.URL, Category: "编程竞赛"})
	records, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.SourceKey != "rss" {
		t.Errorf("unexpected source key: %q", first.SourceKey)
	}
	if first.Deadline != "2026-04-01" {
		t.Errorf("expected deadline from title, got %q", first.Deadline)
	}
	if first.Summary != "Sign up now for the cup." {
		t.Errorf("expected stripped summary, got %q", first.Summary)
	}
	if first.SourceURL != "https://example.org/spring-ai-cup" {
		t.Errorf("unexpected url: %q", first.SourceURL)
	}

	second := records[1]
	if second.Deadline != "" {
		t.Errorf("expected no deadline without a date in the title, got %q", second.Deadline)
	}
}

func TestRSSFeedStableIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	s := NewRSSFeed(config.Source{Name: "Contest Feed", URL: srv.URL})
	a, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a[0].LocalID == "" || a[0].LocalID != b[0].LocalID {
		t.Errorf("expected stable local id, got %q and %q", a[0].LocalID, b[0].LocalID)
	}
	if a[0].LocalID == a[1].LocalID {
		t.Error("expected distinct ids for distinct items")
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<p>Hello &amp; <b>welcome</b></p>")
	if got != "Hello & welcome" {
		t.Errorf("unexpected result: %q", got)
	}
}
