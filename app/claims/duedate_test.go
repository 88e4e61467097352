package claims

import "testing"

func TestResolveExplicitDateWins(t *testing.T) {
	resolver := NewDueDateResolver(testZone)
	claim := Claim{ID: "c1", Type: TypePromise, CompletionConditionDate: mustDate(t, "2025-01-10")}
	followups := []Followup{
		{ID: "f1", ClaimID: "c1", FollowUpDate: mustDate(t, "2025-01-05")},
	}

	due, ok := resolver.Resolve(claim, followups)
	if !ok {
		t.Fatal("Expected a due date")
	}
	if FormatDate(due) != "2025-01-10" {
		t.Errorf("Expected 2025-01-10, got %s", FormatDate(due))
	}
}

func TestResolveFallsBackToEarliestFollowup(t *testing.T) {
	resolver := NewDueDateResolver(testZone)
	claim := Claim{ID: "c1", Type: TypeGoal}
	followups := []Followup{
		{ID: "f3", ClaimID: "c1", FollowUpDate: mustDate(t, "2025-03-01")},
		{ID: "f5", ClaimID: "c1", FollowUpDate: mustDate(t, "2025-05-01"), ProcessedAt: mustTime(t, "2025-05-01T12:00:00Z"), ProcessedUpdateID: "u1"},
		{ID: "f4", ClaimID: "c1", FollowUpDate: mustDate(t, "2025-04-01")},
		{ID: "other", ClaimID: "c2", FollowUpDate: mustDate(t, "2025-01-01")},
	}

	due, ok := resolver.Resolve(claim, followups)
	if !ok {
		t.Fatal("Expected a due date")
	}
	if FormatDate(due) != "2025-03-01" {
		t.Errorf("Expected the minimum followup date 2025-03-01, got %s", FormatDate(due))
	}
}

func TestResolveClosedFollowupStillCounts(t *testing.T) {
	resolver := NewDueDateResolver(testZone)
	claim := Claim{ID: "c1", Type: TypeGoal}
	followups := []Followup{
		{ID: "f1", ClaimID: "c1", FollowUpDate: mustDate(t, "2025-01-01"), ProcessedAt: mustTime(t, "2025-01-01T12:00:00Z"), ProcessedUpdateID: "u1"},
		{ID: "f2", ClaimID: "c1", FollowUpDate: mustDate(t, "2025-02-01")},
	}

	due, _ := resolver.Resolve(claim, followups)
	if FormatDate(due) != "2025-01-01" {
		t.Errorf("Expected closed followup to set the due date, got %s", FormatDate(due))
	}
}

func TestResolveAbsent(t *testing.T) {
	resolver := NewDueDateResolver(testZone)

	// A followup whose date did not parse carries a nil date.
	claim := Claim{ID: "c1", Type: TypeGoal}
	followups := []Followup{{ID: "f1", ClaimID: "c1"}}

	if _, ok := resolver.Resolve(claim, followups); ok {
		t.Error("Expected no due date when nothing is readable")
	}
	if _, ok := resolver.Resolve(claim, nil); ok {
		t.Error("Expected no due date without followups")
	}
}

func TestResolveAllOmitsUnresolvable(t *testing.T) {
	resolver := NewDueDateResolver(testZone)
	claims := []Claim{
		{ID: "a", Type: TypePromise, CompletionConditionDate: mustDate(t, "2025-01-10")},
		{ID: "b", Type: TypeGoal},
		{ID: "c", Type: TypeGoal},
	}
	followups := []Followup{{ID: "f1", ClaimID: "c", FollowUpDate: mustDate(t, "2025-02-02")}}

	got := resolver.ResolveAll(claims, followups)

	if len(got) != 2 {
		t.Fatalf("Expected 2 resolved claims, got %d", len(got))
	}
	if _, ok := got["b"]; ok {
		t.Error("Expected claim b to be absent")
	}
	if FormatDate(got["c"]) != "2025-02-02" {
		t.Errorf("Expected c due 2025-02-02, got %s", FormatDate(got["c"]))
	}
}
