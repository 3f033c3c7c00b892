package curate

import (
	"testing"
	"time"

	"github.com/eprogressing/race-radar/internal/feed"
)

var expireNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestExpiredBoundary(t *testing.T) {
	cases := []struct {
		deadline string
		expired  bool
	}{
		{"2026-03-03", false}, // exactly 7 days old: retained
		{"2026-03-02", true},  // one day further: dropped
		{"2026-03-10", false},
		{"", false}, // undetermined never expires
	}
	for _, tc := range cases {
		rec := feed.CompetitionRecord{Deadline: tc.deadline}
		if got := Expired(&rec, expireNow, 7); got != tc.expired {
			t.Errorf("deadline %q: expected expired=%v, got %v", tc.deadline, tc.expired, got)
		}
	}
}

func TestFilterExpiredKeepsExempt(t *testing.T) {
	records := []feed.CompetitionRecord{
		{ID: "old_whitelisted", Title: "挑战杯", Deadline: "2025-01-01"},
		{ID: "old_plain", Title: "forgotten jam", Deadline: "2025-01-01"},
		{ID: "fresh", Title: "new contest", Deadline: "2026-03-20"},
	}

	exempt := func(rec *feed.CompetitionRecord) bool {
		return rec.Title == "挑战杯"
	}

	kept, dropped := FilterExpired(records, expireNow, 7, exempt)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if kept[0].ID != "old_whitelisted" || kept[1].ID != "fresh" {
		t.Errorf("unexpected survivors: %v, %v", kept[0].ID, kept[1].ID)
	}
	if len(dropped) != 1 {
		t.Fatalf("expected 1 dropped, got %d", len(dropped))
	}
	if dropped[0].Record.ID != "old_plain" || dropped[0].Reason != ReasonExpired {
		t.Errorf("unexpected drop: %+v", dropped[0])
	}
}

func TestFilterExpiredNilExempt(t *testing.T) {
	records := []feed.CompetitionRecord{
		{ID: "old", Deadline: "2020-01-01"},
	}
	kept, dropped := FilterExpired(records, expireNow, 7, nil)
	if len(kept) != 0 || len(dropped) != 1 {
		t.Errorf("expected everything dropped, kept %d", len(kept))
	}
}
