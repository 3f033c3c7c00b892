package curate

import (
	"strings"

	"github.com/eprogressing/race-radar/internal/feed"
)

// Deduplicate collapses records sharing an id, or the same source and
// folded title. The record with more populated fields survives; on a tie
// the later arrival wins, since reruns see the freshest data last. Order
// of first appearance is preserved.
func Deduplicate(records []feed.CompetitionRecord) ([]feed.CompetitionRecord, int) {
	out := make([]feed.CompetitionRecord, 0, len(records))
	byID := make(map[string]int)
	byTitle := make(map[string]int)

	for _, rec := range records {
		idKey := rec.ID
		titleKey := TitleKey(&rec)

		idx, found := byID[idKey]
		if !found {
			idx, found = byTitle[titleKey]
		}

		if !found {
			out = append(out, rec)
			byID[idKey] = len(out) - 1
			byTitle[titleKey] = len(out) - 1
			continue
		}

		if rec.Completeness() >= out[idx].Completeness() {
			out[idx] = rec
			byID[idKey] = idx
			byTitle[titleKey] = idx
		}
	}

	return out, len(records) - len(out)
}

// TitleKey identifies a record for duplicate checks beyond the id:
// listings from the same source with the same folded title describe one
// competition even when their ids differ, as happens when a notice URL
// slug changes between fetches.
func TitleKey(rec *feed.CompetitionRecord) string {
	return rec.SourceName + "\x00" + foldTitle(rec.Title)
}

// foldTitle normalizes a title for duplicate comparison: case and
// whitespace differences do not make two listings distinct.
func foldTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
