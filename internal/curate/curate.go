package curate

import (
	"log"
	"time"

	"github.com/eprogressing/race-radar/internal/feed"
	"github.com/eprogressing/race-radar/internal/source"
)

// Drop reasons, kept on diagnostics only and never published.
const (
	ReasonMalformed = "malformed"
	ReasonBadTitle  = "bad_title"
	ReasonDuplicate = "duplicate"
	ReasonExpired   = "expired"
)

// Dropped records one discarded candidate and why.
type Dropped struct {
	Record feed.CompetitionRecord
	Reason string
	Rule   string // sanitizer rule name for bad_title drops
}

// Result is the outcome of a curation pass.
type Result struct {
	Kept       []feed.CompetitionRecord
	Dropped    []Dropped
	Duplicates int
}

// CountByReason tallies drops per reason, duplicates included.
func (r *Result) CountByReason() map[string]int {
	counts := make(map[string]int)
	for _, d := range r.Dropped {
		counts[d.Reason]++
	}
	if r.Duplicates > 0 {
		counts[ReasonDuplicate] = r.Duplicates
	}
	return counts
}

// Curator runs the record-level cleanup: normalization, title screening
// and duplicate collapsing.
type Curator struct {
	sanitizer *Sanitizer
}

// NewCurator creates a curator with the given extra title reject patterns.
func NewCurator(extraPatterns []string) *Curator {
	return &Curator{sanitizer: NewSanitizer(extraPatterns)}
}

// Run curates the raw records fetched this pass. Statuses are derived
// against now.
func (c *Curator) Run(raw []source.Record, now time.Time) *Result {
	r := &Result{}

	cleaned := make([]feed.CompetitionRecord, 0, len(raw))
	for _, candidate := range raw {
		rec, ok := Normalize(candidate)
		if !ok {
			r.Dropped = append(r.Dropped, Dropped{
				Record: feed.CompetitionRecord{Title: candidate.Title, SourceName: candidate.SourceName},
				Reason: ReasonMalformed,
			})
			continue
		}
		rec.Status = DeriveStatus(candidate.Ongoing, &rec, now)

		if rule, bad := c.sanitizer.Check(&rec); bad {
			r.Dropped = append(r.Dropped, Dropped{Record: rec, Reason: ReasonBadTitle, Rule: rule})
			continue
		}

		cleaned = append(cleaned, rec)
	}

	r.Kept, r.Duplicates = Deduplicate(cleaned)

	if len(r.Dropped) > 0 || r.Duplicates > 0 {
		log.Printf("Curated %d records: %d kept, %d dropped, %d duplicates",
			len(raw), len(r.Kept), len(r.Dropped), r.Duplicates)
	}
	return r
}
