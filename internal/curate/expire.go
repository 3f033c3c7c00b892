package curate

import (
	"time"

	"github.com/eprogressing/race-radar/internal/feed"
)

// Expired reports whether the record deadline lies more than maxDays days
// in the past. A deadline exactly maxDays old is still inside the window,
// and an undetermined deadline never expires.
func Expired(rec *feed.CompetitionRecord, now time.Time, maxDays int) bool {
	d, ok := rec.DeadlineDate()
	if !ok {
		return false
	}
	cutoff := feed.DateOnly(now).AddDate(0, 0, -maxDays)
	return d.Before(cutoff)
}

// FilterExpired splits records into survivors and expired drops. Records
// for which exempt returns true are kept regardless of age; recognized
// competitions stay listed as history.
func FilterExpired(records []feed.CompetitionRecord, now time.Time, maxDays int, exempt func(*feed.CompetitionRecord) bool) ([]feed.CompetitionRecord, []Dropped) {
	kept := make([]feed.CompetitionRecord, 0, len(records))
	var dropped []Dropped

	for _, rec := range records {
		if Expired(&rec, now, maxDays) && (exempt == nil || !exempt(&rec)) {
			dropped = append(dropped, Dropped{Record: rec, Reason: ReasonExpired})
			continue
		}
		kept = append(kept, rec)
	}

	return kept, dropped
}
