package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eprogressing/race-radar/internal/config"
)

type stubSource struct {
	name    string
	records []Record
	err     error
	delay   time.Duration
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) ([]Record, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.records, s.err
}

func TestCollectIsolatesFailures(t *testing.T) {
	c := &Collector{
		timeout: time.Second,
		sources: []Source{
			&stubSource{name: "ok", records: []Record{{SourceKey: "ok", LocalID: "1", Title: "A"}}},
			&stubSource{name: "down", err: errors.New("connection refused")},
			&stubSource{name: "also-ok", records: []Record{{SourceKey: "ok2", LocalID: "2", Title: "B"}}},
		},
	}

	r := c.Collect(context.Background())

	if len(r.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(r.Records))
	}
	if len(r.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(r.Failures))
	}
	if _, ok := r.Failures["down"]; !ok {
		t.Error("expected failure recorded for 'down'")
	}
	if r.PerSource["ok"] != 1 || r.PerSource["also-ok"] != 1 {
		t.Errorf("unexpected per-source counts: %v", r.PerSource)
	}
}

func TestCollectKeepsConfigOrder(t *testing.T) {
	c := &Collector{
		timeout: time.Second,
		sources: []Source{
			&stubSource{name: "slow", delay: 30 * time.Millisecond, records: []Record{{LocalID: "first"}}},
			&stubSource{name: "fast", records: []Record{{LocalID: "second"}}},
		},
	}

	r := c.Collect(context.Background())
	if len(r.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(r.Records))
	}
	if r.Records[0].LocalID != "first" || r.Records[1].LocalID != "second" {
		t.Errorf("expected config order, got %v then %v", r.Records[0].LocalID, r.Records[1].LocalID)
	}
}

func TestCollectTimesOutSlowSource(t *testing.T) {
	c := &Collector{
		timeout: 20 * time.Millisecond,
		sources: []Source{
			&stubSource{name: "stuck", delay: time.Second, records: []Record{{LocalID: "never"}}},
			&stubSource{name: "fine", records: []Record{{LocalID: "yes"}}},
		},
	}

	start := time.Now()
	r := c.Collect(context.Background())
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("collect took too long: %v", elapsed)
	}

	if len(r.Records) != 1 || r.Records[0].LocalID != "yes" {
		t.Errorf("expected only the fast source, got %v", r.Records)
	}
	if _, ok := r.Failures["stuck"]; !ok {
		t.Error("expected timeout recorded as failure")
	}
}

func TestSucceededCountsProductiveSources(t *testing.T) {
	r := &Result{PerSource: map[string]int{"a": 3, "b": 0}}
	if got := r.Succeeded(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestNewCollectorSkipsDisabledAndUnknown(t *testing.T) {
	off := false
	cfg := &config.Config{
		Fetch: config.Fetch{TimeoutSeconds: 5},
		Sources: []config.Source{
			{Name: "Codeforces", Type: "codeforces", URL: "https://example.org"},
			{Name: "Off", Type: "atcoder", URL: "https://example.org", Enabled: &off},
			{Name: "Mystery", Type: "carrier-pigeon", URL: "https://example.org"},
		},
	}

	c := NewCollector(cfg)
	if len(c.Sources()) != 1 {
		t.Fatalf("expected 1 source, got %d", len(c.Sources()))
	}
	if c.Sources()[0].Name() != "Codeforces" {
		t.Errorf("unexpected source: %q", c.Sources()[0].Name())
	}
}

func TestTimeoutDefaultsWhenUnset(t *testing.T) {
	c := NewCollector(&config.Config{Fetch: config.Fetch{TimeoutSeconds: 0}})
	if got := c.Timeout(); got != 20*time.Second {
		t.Errorf("expected 20s default, got %v", got)
	}

	c = NewCollector(&config.Config{Fetch: config.Fetch{TimeoutSeconds: 5}})
	if got := c.Timeout(); got != 5*time.Second {
		t.Errorf("expected configured 5s, got %v", got)
	}
}
