package curate

import (
	"testing"
	"time"

	"github.com/eprogressing/race-radar/internal/source"
)

func TestCuratorRunEndToEnd(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	raw := []source.Record{
		{
			SourceKey: "codeforces", LocalID: "1998", Title: "Codeforces Round 1998",
			Deadline: "2026-03-05", SourceName: "Codeforces",
			SourceURL: "https://codeforces.com/contests/1998",
		},
		{
			SourceKey: "codeforces", LocalID: "1998", Title: "Codeforces Round 1998",
			Deadline: "2026-03-05", SourceName: "Codeforces",
			SourceURL: "https://codeforces.com/contests/1998", Summary: "richer copy",
		},
		{
			SourceKey: "cumcm", LocalID: "beian", Title: "京ICP备12345号",
			SourceName: "CUMCM 官网公告", SourceURL: "https://www.mcm.edu.cn/beian.html",
		},
		{
			SourceKey: "cumcm", LocalID: "", Title: "missing id",
			SourceName: "CUMCM 官网公告", SourceURL: "https://www.mcm.edu.cn/x.html",
		},
	}

	c := NewCurator(nil)
	r := c.Run(raw, now)

	if len(r.Kept) != 1 {
		t.Fatalf("expected 1 kept record, got %d", len(r.Kept))
	}
	if r.Kept[0].Summary != "richer copy" {
		t.Errorf("expected richer duplicate to survive, got %+v", r.Kept[0])
	}
	if r.Kept[0].Status == "" {
		t.Error("expected status derived during curation")
	}
	if r.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", r.Duplicates)
	}

	counts := r.CountByReason()
	if counts[ReasonBadTitle] != 1 {
		t.Errorf("expected 1 bad_title drop, got %d", counts[ReasonBadTitle])
	}
	if counts[ReasonMalformed] != 1 {
		t.Errorf("expected 1 malformed drop, got %d", counts[ReasonMalformed])
	}
	if counts[ReasonDuplicate] != 1 {
		t.Errorf("expected 1 duplicate counted, got %d", counts[ReasonDuplicate])
	}
}
