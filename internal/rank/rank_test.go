package rank

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/eprogressing/race-radar/internal/feed"
)

func rankedFixture() []feed.CompetitionRecord {
	return []feed.CompetitionRecord{
		{ID: "e", QualityScore: 10, Status: feed.StatusEnded},
		{ID: "a", QualityScore: 80, Status: feed.StatusOpen},
		{ID: "b", QualityScore: 80, Status: feed.StatusOngoing},
		{ID: "d", QualityScore: 40, Status: feed.StatusOpen, Deadline: "2026-04-01"},
		{ID: "c", QualityScore: 40, Status: feed.StatusOpen, Deadline: "2026-03-01"},
		{ID: "g", QualityScore: 40, Status: feed.StatusOpen},
		{ID: "f", QualityScore: 40, Status: feed.StatusOpen, Deadline: "2026-03-01"},
	}
}

func TestSortOrdersByScoreStatusDeadlineID(t *testing.T) {
	records := rankedFixture()
	Sort(records)

	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	want := []string{"b", "a", "c", "f", "d", "g", "e"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected order %v, got %v", want, ids)
	}
}

func TestSortIsDeterministicUnderPermutation(t *testing.T) {
	base := rankedFixture()
	Sort(base)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		shuffled := rankedFixture()
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		Sort(shuffled)
		if !reflect.DeepEqual(base, shuffled) {
			t.Fatalf("trial %d: order depends on input permutation", trial)
		}
	}
}

func TestSortEmptyAndSingle(t *testing.T) {
	Sort(nil)

	one := []feed.CompetitionRecord{{ID: "only"}}
	Sort(one)
	if one[0].ID != "only" {
		t.Error("single record disturbed")
	}
}
