package rank

import (
	"sort"

	"github.com/eprogressing/race-radar/internal/feed"
)

// Sort orders records for publication: quality score descending, then
// status (ongoing before open before ended), then nearer deadline with
// undetermined deadlines last, then id. The full chain ends in the unique
// id, so equal inputs always yield the same order.
func Sort(records []feed.CompetitionRecord) {
	sort.Slice(records, func(i, j int) bool {
		return less(&records[i], &records[j])
	})
}

func less(a, b *feed.CompetitionRecord) bool {
	if a.QualityScore != b.QualityScore {
		return a.QualityScore > b.QualityScore
	}
	if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
		return ra < rb
	}
	da, aok := a.DeadlineDate()
	db, bok := b.DeadlineDate()
	if aok != bok {
		return aok
	}
	if aok && !da.Equal(db) {
		return da.Before(db)
	}
	return a.ID < b.ID
}

func statusRank(s feed.Status) int {
	switch s {
	case feed.StatusOngoing:
		return 0
	case feed.StatusOpen:
		return 1
	case feed.StatusEnded:
		return 2
	default:
		return 3
	}
}
