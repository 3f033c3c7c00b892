package merge

import (
	"log"
	"reflect"
	"time"

	"github.com/eprogressing/race-radar/internal/curate"
	"github.com/eprogressing/race-radar/internal/feed"
	"github.com/eprogressing/race-radar/internal/rank"
	"github.com/eprogressing/race-radar/internal/score"
)

// Stats describes what a merge did.
type Stats struct {
	New          int
	Refreshed    int
	Retained     int
	Duplicates   int // prior-only items collapsed into a retitled fresh copy
	Expired      []curate.Dropped
	NoChange     bool
	TotalFailure bool // nothing fetched, prior carried over untouched
}

// Merger reconciles one run's curated records with the prior feed snapshot.
type Merger struct {
	classifier *score.Classifier
	scorer     *score.Scorer
	maxDays    int
}

// New creates a merger.
func New(classifier *score.Classifier, scorer *score.Scorer, maxExpiredDays int) *Merger {
	return &Merger{classifier: classifier, scorer: scorer, maxDays: maxExpiredDays}
}

// Merge combines the fresh batch with the prior items. Fresh data wins for
// ids present in both, and a prior item re-listed under a new id (same
// source, same folded title) is collapsed into the fresh copy and counted
// as a duplicate. Other prior-only items stay listed with their status and
// score re-evaluated for today, until they age out of the retention window;
// whitelisted competitions never age out. When the run fetched nothing at
// all the prior items are carried over exactly as they were, so a fully
// failed run can never damage the feed.
func (m *Merger) Merge(prior, fresh []feed.CompetitionRecord, now time.Time) ([]feed.CompetitionRecord, *Stats) {
	stats := &Stats{}

	if len(fresh) == 0 {
		stats.TotalFailure = true
		stats.Retained = len(prior)
		stats.NoChange = true
		out := make([]feed.CompetitionRecord, 0, len(prior))
		for i := range prior {
			out = append(out, prior[i].Clone())
		}
		return out, stats
	}

	priorIDs := make(map[string]bool, len(prior))
	for i := range prior {
		priorIDs[prior[i].ID] = true
	}
	freshIDs := make(map[string]bool, len(fresh))
	freshTitles := make(map[string]bool, len(fresh))
	for i := range fresh {
		freshIDs[fresh[i].ID] = true
		freshTitles[curate.TitleKey(&fresh[i])] = true
	}

	merged := make([]feed.CompetitionRecord, 0, len(prior)+len(fresh))
	for i := range fresh {
		if priorIDs[fresh[i].ID] {
			stats.Refreshed++
		} else {
			stats.New++
		}
		merged = append(merged, fresh[i])
	}

	for i := range prior {
		if freshIDs[prior[i].ID] {
			continue
		}
		rec := prior[i].Clone()

		// Same source and folded title under a new id is the same
		// competition re-listed; the fresher copy already made it in.
		if freshTitles[curate.TitleKey(&rec)] {
			stats.Duplicates++
			continue
		}

		if curate.Expired(&rec, now, m.maxDays) && !m.scorer.IsWhitelisted(&rec) {
			stats.Expired = append(stats.Expired, curate.Dropped{Record: rec, Reason: curate.ReasonExpired})
			continue
		}

		rec.Status = curate.DeriveStatus(false, &rec, now)
		m.classifier.Classify(&rec)
		m.scorer.Apply(&rec, now)
		merged = append(merged, rec)
		stats.Retained++
	}

	rank.Sort(merged)
	stats.NoChange = reflect.DeepEqual(merged, prior)

	if len(stats.Expired) > 0 {
		log.Printf("Aged out %d expired items from the prior feed", len(stats.Expired))
	}
	return merged, stats
}
