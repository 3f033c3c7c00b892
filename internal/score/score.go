package score

import (
	"time"

	"github.com/eprogressing/race-radar/internal/config"
	"github.com/eprogressing/race-radar/internal/feed"
)

// Scorer computes quality scores. Scoring is a pure function of the record
// fields and the evaluation date, so the same inputs always produce the
// same score and reasons.
type Scorer struct {
	wl      *Whitelist
	weights config.Scoring
	trust   map[string]float64
}

// NewScorer creates a scorer from the configured weight table, per-source
// trust and the whitelist rules.
func NewScorer(cfg *config.Config, wl *Whitelist) *Scorer {
	trust := make(map[string]float64, len(cfg.Sources))
	for _, s := range cfg.Sources {
		trust[s.Name] = s.Trust
	}
	return &Scorer{wl: wl, weights: cfg.Scoring, trust: trust}
}

// Apply computes the record score for the given date and stores it on the
// record together with the reason tags.
func (s *Scorer) Apply(rec *feed.CompetitionRecord, now time.Time) {
	score, reasons := s.Score(rec, now)
	rec.QualityScore = score
	rec.RankReasons = reasons
}

// Score evaluates every signal against the record. Each signal that
// contributes appends a reason tag, so the total stays auditable.
func (s *Scorer) Score(rec *feed.CompetitionRecord, now time.Time) (float64, []string) {
	today := feed.DateOnly(now)
	score := 0.0
	reasons := []string{}

	switch rec.Status {
	case feed.StatusOngoing:
		score += s.weights.StatusOngoing
		reasons = append(reasons, "ongoing")
	case feed.StatusOpen:
		score += s.weights.StatusOpen
		reasons = append(reasons, "open")
	}

	if rule, ok := s.wl.Match(rec); ok {
		w := rule.Weight
		if w == 0 {
			w = s.weights.WhitelistDefault
		}
		score += w
		reasons = append(reasons, "whitelisted")
	}

	if t := s.trust[rec.SourceName]; t > 0 {
		score += t
		reasons = append(reasons, "authoritative-source")
	}

	if s.wl.IsOfficial(rec) {
		score += s.weights.OfficialDomain
		reasons = append(reasons, "official-domain")
	}

	if d, ok := rec.DeadlineDate(); ok && !d.Before(today) {
		days := int(d.Sub(today).Hours() / 24)
		if days <= s.weights.SoonWindowDays {
			score += s.weights.DeadlineSoon
			reasons = append(reasons, "deadline-soon")
		}
	}

	for _, tier := range s.weights.BonusTiers {
		if rec.BonusAmount >= tier.Min && tier.Min > 0 {
			score += tier.Points
			reasons = append(reasons, tier.Reason)
			break
		}
	}

	for _, c := range rec.Category {
		if isCanonical(c) {
			score += s.weights.CategoryMatch
			reasons = append(reasons, "categorized")
			break
		}
	}

	if rec.Summary != "" {
		score += s.weights.SummaryPresent
		reasons = append(reasons, "has-summary")
	}

	if len(rec.Tags) > 0 {
		score += s.weights.TagsPresent
		reasons = append(reasons, "tagged")
	}

	return score, reasons
}

// IsWhitelisted reports whether any whitelist rule matches the record.
// Whitelisted competitions are kept past their expiry window.
func (s *Scorer) IsWhitelisted(rec *feed.CompetitionRecord) bool {
	_, ok := s.wl.Match(rec)
	return ok
}

func isCanonical(category string) bool {
	for _, c := range feed.Categories {
		if c == category {
			return true
		}
	}
	return false
}
