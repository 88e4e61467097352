package claims

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLatestUpdatesPermutationInvariant(t *testing.T) {
	records := []Update{
		{ID: "u1", ClaimID: "a", Verdict: "in_progress", CreatedAt: mustTime(t, "2025-01-01T10:00:00Z")},
		{ID: "u2", ClaimID: "a", Verdict: "complete", CreatedAt: mustTime(t, "2025-02-01T10:00:00Z")},
		{ID: "u3", ClaimID: "b", Verdict: "False", CreatedAt: mustTime(t, "2025-01-05T10:00:00Z")},
		{ID: "u4", ClaimID: "b", Verdict: "True", CreatedAt: mustTime(t, "2025-01-05T10:00:00Z")},
		{ID: "u5", ClaimID: "c", Verdict: "True"},
	}

	permutations := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 3, 1},
		{3, 1, 0, 4, 2},
	}

	var first map[string]Update
	for _, perm := range permutations {
		input := make([]Update, 0, len(perm))
		for _, i := range perm {
			input = append(input, records[i])
		}

		got := LatestUpdates(input)
		if first == nil {
			first = got
			continue
		}
		if diff := cmp.Diff(first, got); diff != "" {
			t.Errorf("LatestUpdates depends on input order (-first +got):\n%s", diff)
		}
	}

	if first["a"].ID != "u2" {
		t.Errorf("Expected latest update of a to be u2, got %s", first["a"].ID)
	}
	// Same instant: greater id wins.
	if first["b"].ID != "u4" {
		t.Errorf("Expected tie on b to resolve to u4, got %s", first["b"].ID)
	}
	if _, ok := first["c"]; ok {
		t.Error("Expected update without timestamp to be ignored")
	}
}

func TestEarliestFollowupsTieBreak(t *testing.T) {
	followups := []Followup{
		{ID: "f3", ClaimID: "a", FollowUpDate: mustDate(t, "2025-03-01")},
		{ID: "f2", ClaimID: "a", FollowUpDate: mustDate(t, "2025-01-01")},
		{ID: "f1", ClaimID: "a", FollowUpDate: mustDate(t, "2025-01-01")},
		{ID: "f0", ClaimID: "a"},
	}

	got := EarliestFollowups(followups)
	if got["a"].ID != "f1" {
		t.Errorf("Expected f1 (lesser id on tie), got %s", got["a"].ID)
	}
}

func TestReduceFirstWins(t *testing.T) {
	type rec struct{ claim, id string }
	records := []rec{{"a", "1"}, {"b", "2"}, {"a", "3"}}

	got := Reduce(records, func(r rec) string { return r.claim })

	if len(got) != 2 {
		t.Fatalf("Expected 2 claims, got %d", len(got))
	}
	if got["a"].id != "1" {
		t.Errorf("Expected first record of a to win, got %s", got["a"].id)
	}
}

func TestNextFollowupsSkipsClosedAndPast(t *testing.T) {
	today := *mustDate(t, "2025-01-10")
	followups := []Followup{
		{ID: "past", ClaimID: "a", FollowUpDate: mustDate(t, "2025-01-05")},
		{ID: "closed", ClaimID: "a", FollowUpDate: mustDate(t, "2025-01-12"), ProcessedAt: mustTime(t, "2025-01-12T10:00:00Z"), ProcessedUpdateID: "u1"},
		{ID: "later", ClaimID: "a", FollowUpDate: mustDate(t, "2025-02-01")},
		{ID: "today", ClaimID: "b", FollowUpDate: mustDate(t, "2025-01-10")},
	}

	got := NextFollowups(followups, today)

	if got["a"].ID != "later" {
		t.Errorf("Expected next check of a to be 'later', got %q", got["a"].ID)
	}
	if got["b"].ID != "today" {
		t.Errorf("Expected a check dated today to count as upcoming, got %q", got["b"].ID)
	}
}
