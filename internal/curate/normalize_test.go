package curate

import (
	"strings"
	"testing"
	"time"

	"github.com/eprogressing/race-radar/internal/feed"
	"github.com/eprogressing/race-radar/internal/source"
)

func validRaw() source.Record {
	return source.Record{
		SourceKey:  "codeforces",
		LocalID:    "1998",
		Title:      "  Codeforces Round 1998  ",
		Deadline:   "2026-02-01",
		Category:   []string{"编程竞赛"},
		Tags:       []string{"Codeforces"},
		SourceName: "Codeforces",
		SourceURL:  "https://codeforces.com/contests/1998",
		Summary:    "Codeforces contest",
	}
}

func TestNormalizeBuildsStableID(t *testing.T) {
	rec, ok := Normalize(validRaw())
	if !ok {
		t.Fatal("expected record to normalize")
	}
	if rec.ID != "codeforces_1998" {
		t.Errorf("unexpected id: %q", rec.ID)
	}
	if rec.Title != "Codeforces Round 1998" {
		t.Errorf("expected trimmed title, got %q", rec.Title)
	}
}

func TestNormalizeRejectsMissingRequiredFields(t *testing.T) {
	missingTitle := validRaw()
	missingTitle.Title = "   "
	if _, ok := Normalize(missingTitle); ok {
		t.Error("expected drop for blank title")
	}

	missingID := validRaw()
	missingID.LocalID = ""
	if _, ok := Normalize(missingID); ok {
		t.Error("expected drop for missing local id")
	}

	badURL := validRaw()
	badURL.SourceURL = "notaurl"
	if _, ok := Normalize(badURL); ok {
		t.Error("expected drop for relative url")
	}

	ftpURL := validRaw()
	ftpURL.SourceURL = "ftp://example.org/contest"
	if _, ok := Normalize(ftpURL); ok {
		t.Error("expected drop for non-http scheme")
	}
}

func TestNormalizeDegradesBadDeadline(t *testing.T) {
	raw := validRaw()
	raw.Deadline = "next friday"
	rec, ok := Normalize(raw)
	if !ok {
		t.Fatal("expected record kept")
	}
	if rec.Deadline != "" {
		t.Errorf("expected undetermined deadline, got %q", rec.Deadline)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	raw := validRaw()
	raw.SourceName = ""
	raw.Category = nil
	raw.Tags = nil
	raw.BonusAmount = -5

	rec, ok := Normalize(raw)
	if !ok {
		t.Fatal("expected record kept")
	}
	if rec.SourceName != "Unknown" {
		t.Errorf("expected Unknown source, got %q", rec.SourceName)
	}
	if rec.Category == nil || rec.Tags == nil {
		t.Error("expected empty slices, not nil")
	}
	if rec.BonusAmount != 0 {
		t.Errorf("expected negative bonus cleared, got %d", rec.BonusAmount)
	}
}

func TestNormalizeTruncatesLongSummary(t *testing.T) {
	raw := validRaw()
	raw.Summary = strings.Repeat("很", 400)
	rec, _ := Normalize(raw)
	if got := len([]rune(rec.Summary)); got > maxSummaryRunes+1 {
		t.Errorf("summary too long: %d runes", got)
	}
	if !strings.HasSuffix(rec.Summary, "…") {
		t.Error("expected ellipsis suffix")
	}
}

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	running := feed.CompetitionRecord{Deadline: "2026-02-20"}
	if got := DeriveStatus(true, &running, now); got != feed.StatusOngoing {
		t.Errorf("expected ongoing, got %s", got)
	}

	future := feed.CompetitionRecord{Deadline: "2026-03-02"}
	if got := DeriveStatus(false, &future, now); got != feed.StatusOpen {
		t.Errorf("expected open, got %s", got)
	}

	today := feed.CompetitionRecord{Deadline: "2026-03-01"}
	if got := DeriveStatus(false, &today, now); got != feed.StatusOpen {
		t.Errorf("expected open on deadline day, got %s", got)
	}

	past := feed.CompetitionRecord{Deadline: "2026-02-28"}
	if got := DeriveStatus(false, &past, now); got != feed.StatusEnded {
		t.Errorf("expected ended, got %s", got)
	}

	undetermined := feed.CompetitionRecord{}
	if got := DeriveStatus(false, &undetermined, now); got != feed.StatusOpen {
		t.Errorf("expected open without deadline, got %s", got)
	}
}
