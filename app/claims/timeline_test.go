package claims

import (
	"testing"

	"github.com/lysyi3m/claim-tracker/app/verdict"
)

func timelineFixture(t *testing.T) (Claim, *Article, []Followup, []Update) {
	t.Helper()
	claim := Claim{ID: "c1", Type: TypePromise, CompletionConditionDate: mustDate(t, "2025-03-01")}
	article := &Article{ID: "a1", Title: "Budget announced", PublishDate: mustDate(t, "2024-12-01")}
	followups := []Followup{
		{ID: "f1", ClaimID: "c1", FollowUpDate: mustDate(t, "2025-01-01"), ProcessedAt: mustTime(t, "2025-01-01T15:00:00Z"), ProcessedUpdateID: "u2"},
		{ID: "f2", ClaimID: "c1", FollowUpDate: mustDate(t, "2025-02-01")},
	}
	updates := []Update{
		{ID: "u1", ClaimID: "c1", Verdict: "in_progress", CreatedAt: mustTime(t, "2024-12-15T15:00:00Z"), Output: PlainOutput("Work has started")},
		{ID: "u2", ClaimID: "c1", Verdict: "Misleading", CreatedAt: mustTime(t, "2025-01-01T15:00:00Z"), Output: ModelOutput{
			Structured: true,
			Text:       "Only half was funded",
			Sources:    []string{"https://example.org/report"},
		}},
	}
	return claim, article, followups, updates
}

func TestTimelineCompleteness(t *testing.T) {
	claim, article, followups, updates := timelineFixture(t)
	b := NewTimelineBuilder(testZone)

	events := b.Run(claim, article, followups, updates, at(t, "2025-02-10"))

	if len(events) != 6 {
		t.Fatalf("Expected 6 events, got %d", len(events))
	}

	// u2 was created later on the day f1 was scheduled for.
	wantKinds := []EventKind{EventDue, EventScheduled, EventUpdate, EventScheduled, EventUpdate, EventArticle}
	wantIDs := []string{"c1", "f2", "u2", "f1", "u1", "a1"}
	for i, e := range events {
		if e.Kind != wantKinds[i] || e.ID != wantIDs[i] {
			t.Errorf("Event %d: expected %s/%s, got %s/%s", i, wantKinds[i], wantIDs[i], e.Kind, e.ID)
		}
		if i > 0 && events[i-1].Date.Before(e.Date) {
			t.Errorf("Event %d is newer than the event before it", i)
		}
	}

	if !events[1].Overdue || events[1].Processed {
		t.Error("Expected open followup f2 to be overdue")
	}
	if events[3].Overdue || !events[3].Processed || events[3].ProcessedUpdateID != "u2" {
		t.Errorf("Expected f1 closed by u2, got %+v", events[3])
	}
	if events[2].Verdict == nil || events[2].Verdict.Category != verdict.Misleading {
		t.Errorf("Expected u2 verdict Misleading, got %v", events[2].Verdict)
	}
	if events[2].Text != "Only half was funded" || len(events[2].Sources) != 1 {
		t.Errorf("Expected structured output on u2, got %q %v", events[2].Text, events[2].Sources)
	}
	if events[4].Verdict.Category != verdict.Unclear || events[4].Text != "Work has started" {
		t.Errorf("Expected u1 Unclear with plain text, got %v %q", events[4].Verdict, events[4].Text)
	}
	if !events[0].First || !events[5].Last {
		t.Error("Expected first and last flags on the ends")
	}
	for _, e := range events[1:5] {
		if e.First || e.Last {
			t.Errorf("Expected no end flag on %s", e.ID)
		}
	}
}

func TestTimelineNotOverdueOnItsDay(t *testing.T) {
	claim, article, followups, updates := timelineFixture(t)

	events := NewTimelineBuilder(testZone).Run(claim, article, followups, updates, at(t, "2025-02-01"))

	for _, e := range events {
		if e.ID == "f2" && e.Overdue {
			t.Error("Expected a followup due today not to be overdue")
		}
	}
}

func TestTimelineTieOrder(t *testing.T) {
	day := "2025-01-10"
	claim := Claim{ID: "c1", Type: TypePromise, CompletionConditionDate: mustDate(t, day)}
	article := &Article{ID: "a1", PublishDate: mustDate(t, day)}
	followups := []Followup{
		{ID: "f-b", ClaimID: "c1", FollowUpDate: mustDate(t, day)},
		{ID: "f-a", ClaimID: "c1", FollowUpDate: mustDate(t, day)},
	}
	updates := []Update{{ID: "u1", ClaimID: "c1", Verdict: "True", CreatedAt: mustDate(t, day)}}

	events := NewTimelineBuilder(testZone).Run(claim, article, followups, updates, at(t, "2025-01-01"))

	want := []string{"a1", "u1", "f-a", "f-b", "c1"}
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(events))
	}
	for i, e := range events {
		if e.ID != want[i] {
			t.Errorf("Event %d: expected %s, got %s", i, want[i], e.ID)
		}
	}
}

func TestTimelineDanglingUpdateReference(t *testing.T) {
	claim := Claim{ID: "c1", Type: TypeGoal}
	followups := []Followup{
		{ID: "f1", ClaimID: "c1", FollowUpDate: mustDate(t, "2025-01-01"), ProcessedAt: mustTime(t, "2025-01-01T15:00:00Z"), ProcessedUpdateID: "missing"},
	}

	events := NewTimelineBuilder(testZone).Run(claim, nil, followups, nil, at(t, "2025-01-05"))

	for _, e := range events {
		if e.Kind == EventScheduled {
			if e.ProcessedUpdateID != "" {
				t.Errorf("Expected dangling reference to be absent, got %q", e.ProcessedUpdateID)
			}
			if !e.Processed || e.Overdue {
				t.Error("Expected closed followup to stay processed and not overdue")
			}
		}
	}
}

func TestTimelineDropsMalformedRecords(t *testing.T) {
	claim := Claim{ID: "c1", Type: TypeGoal}
	article := &Article{ID: "a1"}
	followups := []Followup{
		{ID: "f1", ClaimID: "c1"},
		{ID: "f2", ClaimID: "other", FollowUpDate: mustDate(t, "2025-01-01")},
	}
	updates := []Update{
		{ID: "u1", ClaimID: "c1", Verdict: "True"},
		{ID: "u2", ClaimID: "c1", Verdict: "True", CreatedAt: mustTime(t, "2025-01-02T10:00:00Z")},
	}

	events := NewTimelineBuilder(testZone).Run(claim, article, followups, updates, at(t, "2025-01-05"))

	if len(events) != 1 || events[0].ID != "u2" {
		t.Fatalf("Expected only u2, got %+v", events)
	}
	if !events[0].First || !events[0].Last {
		t.Error("Expected a single event to be both first and last")
	}
}

func TestTimelineEmpty(t *testing.T) {
	events := NewTimelineBuilder(testZone).Run(Claim{ID: "c1", Type: TypeGoal}, nil, nil, nil, at(t, "2025-01-05"))

	if len(events) != 0 {
		t.Errorf("Expected no events, got %d", len(events))
	}
}
