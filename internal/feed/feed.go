package feed

import (
	"time"
)

// SchemaVersion is the feed document schema version. It changes only when
// the document layout changes incompatibly for clients.
const SchemaVersion = 1

// DateFormat is the calendar-date layout used for deadlines.
const DateFormat = "2006-01-02"

// TimestampFormat is the layout used for the feed updatedAt field.
const TimestampFormat = "2006-01-02T15:04:05Z"

// Status describes where a competition stands relative to its deadline.
type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusOpen    Status = "open"
	StatusEnded   Status = "ended"
)

// Canonical category labels. Clients localize on their side; the feed keeps
// the labels the upstream sites use.
const (
	CategoryProgramming  = "编程"
	CategoryMathModeling = "数学建模"
	CategoryAIData       = "AI数据"
	CategoryInnovation   = "创新创业"
)

// Categories lists the canonical category labels in priority order.
var Categories = []string{
	CategoryProgramming,
	CategoryMathModeling,
	CategoryAIData,
	CategoryInnovation,
}

// CompetitionRecord is one curated competition listing as published in the
// feed. Deadline is a YYYY-MM-DD date or empty when the source gave none.
// BonusAmount zero means no prize information, never a known zero prize.
type CompetitionRecord struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	BonusAmount  int      `json:"bonusAmount,omitempty"`
	BonusText    string   `json:"bonusText,omitempty"`
	Deadline     string   `json:"deadline,omitempty"`
	Category     []string `json:"category"`
	Tags         []string `json:"tags"`
	SourceName   string   `json:"sourceName"`
	SourceURL    string   `json:"sourceUrl"`
	Summary      string   `json:"summary,omitempty"`
	Status       Status   `json:"status"`
	QualityScore float64  `json:"qualityScore"`
	RankReasons  []string `json:"rankReasons"`
}

// DeadlineDate parses the record deadline. ok is false when the deadline is
// absent or unparseable.
func (r *CompetitionRecord) DeadlineDate() (time.Time, bool) {
	if r.Deadline == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateFormat, r.Deadline)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Completeness counts populated optional fields. Used to pick the richer of
// two duplicate records.
func (r *CompetitionRecord) Completeness() int {
	n := 0
	if r.BonusAmount > 0 {
		n++
	}
	if r.BonusText != "" {
		n++
	}
	if r.Deadline != "" {
		n++
	}
	if len(r.Category) > 0 {
		n++
	}
	if len(r.Tags) > 0 {
		n++
	}
	if r.Summary != "" {
		n++
	}
	return n
}

// Clone returns a deep copy of the record. Empty slices stay empty rather
// than collapsing to nil, so a clone marshals identically to its original.
func (r *CompetitionRecord) Clone() CompetitionRecord {
	c := *r
	c.Category = cloneStrings(r.Category)
	c.Tags = cloneStrings(r.Tags)
	c.RankReasons = cloneStrings(r.RankReasons)
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}

// FeedDocument is the published artifact: a schema version, the last change
// timestamp, and the ranked items.
type FeedDocument struct {
	Version   int                 `json:"version"`
	UpdatedAt string              `json:"updatedAt"`
	Items     []CompetitionRecord `json:"items"`
}

// Empty returns a fresh document with no items.
func Empty() *FeedDocument {
	return &FeedDocument{Version: SchemaVersion, Items: []CompetitionRecord{}}
}

// Timestamp formats t in the feed updatedAt layout (UTC, second precision).
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// DateOnly truncates t to its UTC calendar date. Deadline math runs on
// dates, so two runs on the same day see the same distances.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NextUpdatedAt returns the updatedAt value for a document written at now,
// given the prior value. The result never moves backwards.
func NextUpdatedAt(prior string, now time.Time) string {
	next := Timestamp(now)
	if prior == "" {
		return next
	}
	p, err := time.Parse(TimestampFormat, prior)
	if err != nil {
		return next
	}
	if now.UTC().Before(p) {
		return prior
	}
	return next
}
