package claims

import (
	"encoding/json"
	"testing"
)

func decodeNewClaim(t *testing.T, payload string) NewClaim {
	t.Helper()
	var in NewClaim
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return in
}

func TestNormalizeNewPromiseWithDeadline(t *testing.T) {
	in := decodeNewClaim(t, `{
		"type": "Promise",
		"claim": "  Build 100 homes  ",
		"completion_condition_date": "2025-06-30",
		"event_date": "2025-01-01",
		"article_id": "a1",
		"follow_up_worthy": true,
		"priority": "HIGH",
		"mechanism": "funding"
	}`)

	c, err := NormalizeNew(in, testZone)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if c.Type != TypePromise {
		t.Errorf("Expected promise, got %s", c.Type)
	}
	if c.Text != "Build 100 homes" {
		t.Errorf("Expected trimmed text, got %q", c.Text)
	}
	if c.CompletionConditionDate == nil || FormatDate(*c.CompletionConditionDate) != "2025-06-30" {
		t.Errorf("Expected deadline 2025-06-30, got %v", c.CompletionConditionDate)
	}
	if c.EventDate != nil {
		t.Error("Expected event date to be dropped for a promise")
	}
	if c.Priority != "high" || c.Mechanism != "funding" {
		t.Errorf("Expected high/funding, got %s/%s", c.Priority, c.Mechanism)
	}
}

func TestNormalizeNewPromiseWithoutDeadlineBecomesGoal(t *testing.T) {
	in := decodeNewClaim(t, `{"type": "promise", "claim": "Fix roads", "completion_condition_date": "soon", "article_id": "a1"}`)

	c, err := NormalizeNew(in, testZone)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if c.Type != TypeGoal || c.CompletionConditionDate != nil {
		t.Errorf("Expected an undated goal, got %s %v", c.Type, c.CompletionConditionDate)
	}
}

func TestNormalizeNewResolvesDateDelta(t *testing.T) {
	in := decodeNewClaim(t, `{
		"type": "promise",
		"claim": "Report within 90 days",
		"completion_condition_date": {"from_date": "2025-01-01", "days_delta": 3, "weeks_delta": 1, "months_delta": 2},
		"article_id": "a1"
	}`)

	c, err := NormalizeNew(in, testZone)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if c.CompletionConditionDate == nil || FormatDate(*c.CompletionConditionDate) != "2025-03-11" {
		t.Errorf("Expected 2025-03-11, got %v", c.CompletionConditionDate)
	}
}

func TestNormalizeNewStatementKeepsEventDateOnly(t *testing.T) {
	in := decodeNewClaim(t, `{
		"type": "statement",
		"claim": "Crime fell 10%",
		"completion_condition_date": "2025-06-30",
		"event_date": "January 5, 2025",
		"article_id": "a1"
	}`)

	c, err := NormalizeNew(in, testZone)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if c.CompletionConditionDate != nil {
		t.Error("Expected deadline to be dropped for a statement")
	}
	if c.EventDate == nil || FormatDate(*c.EventDate) != "2025-01-05" {
		t.Errorf("Expected event date 2025-01-05, got %v", c.EventDate)
	}
}

func TestNormalizeNewPriorityAndMechanism(t *testing.T) {
	in := NewClaim{Type: "goal", Claim: "Cut waste", ArticleID: "a1", Priority: "high", Mechanism: "vibes"}

	c, err := NormalizeNew(in, testZone)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if c.Priority != "medium" {
		t.Errorf("Expected high priority to drop to medium, got %s", c.Priority)
	}
	if c.Mechanism != "other" {
		t.Errorf("Expected unknown mechanism to map to other, got %s", c.Mechanism)
	}
}

func TestNormalizeNewRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   NewClaim
	}{
		{"unknown type", NewClaim{Type: "rumor", Claim: "x", ArticleID: "a1"}},
		{"empty claim", NewClaim{Type: "goal", Claim: "  ", ArticleID: "a1"}},
		{"missing article", NewClaim{Type: "goal", Claim: "x"}},
		{"bad priority", NewClaim{Type: "goal", Claim: "x", ArticleID: "a1", Priority: "urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NormalizeNew(tt.in, testZone); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestDateInputNilResolve(t *testing.T) {
	var d *DateInput
	if _, ok := d.Resolve(testZone); ok {
		t.Error("Expected nil input to be absent")
	}
}
