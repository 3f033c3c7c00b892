package curate

import (
	"net/url"
	"strings"
	"time"

	"github.com/eprogressing/race-radar/internal/feed"
	"github.com/eprogressing/race-radar/internal/source"
)

const maxSummaryRunes = 280

// Normalize shapes a raw source record into a feed record. ok is false when
// a required field is missing or unusable; such records are counted, never
// published.
func Normalize(raw source.Record) (feed.CompetitionRecord, bool) {
	key := strings.TrimSpace(raw.SourceKey)
	localID := strings.TrimSpace(raw.LocalID)
	title := strings.TrimSpace(raw.Title)
	if key == "" || localID == "" || title == "" || !validURL(raw.SourceURL) {
		return feed.CompetitionRecord{}, false
	}

	rec := feed.CompetitionRecord{
		ID:          key + "_" + localID,
		Title:       title,
		BonusAmount: raw.BonusAmount,
		BonusText:   strings.TrimSpace(raw.BonusText),
		Category:    append([]string{}, raw.Category...),
		Tags:        append([]string{}, raw.Tags...),
		SourceName:  strings.TrimSpace(raw.SourceName),
		SourceURL:   raw.SourceURL,
		Summary:     truncateSummary(strings.TrimSpace(raw.Summary)),
	}
	if rec.SourceName == "" {
		rec.SourceName = "Unknown"
	}
	if rec.BonusAmount < 0 {
		rec.BonusAmount = 0
	}

	// An unparseable deadline degrades to undetermined; the record stays.
	if raw.Deadline != "" {
		if _, err := time.Parse(feed.DateFormat, raw.Deadline); err == nil {
			rec.Deadline = raw.Deadline
		}
	}

	return rec, true
}

// DeriveStatus computes the record status. A source-declared running state
// wins; otherwise the deadline decides, and no deadline means still open.
func DeriveStatus(ongoing bool, rec *feed.CompetitionRecord, now time.Time) feed.Status {
	if ongoing {
		return feed.StatusOngoing
	}
	d, ok := rec.DeadlineDate()
	if !ok {
		return feed.StatusOpen
	}
	if d.Before(feed.DateOnly(now)) {
		return feed.StatusEnded
	}
	return feed.StatusOpen
}

func validURL(rawurl string) bool {
	u, err := url.Parse(rawurl)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func truncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSummaryRunes {
		return s
	}
	return strings.TrimSpace(string(runes[:maxSummaryRunes])) + "…"
}
