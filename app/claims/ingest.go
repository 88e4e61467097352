package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var validPriorities = map[string]bool{"high": true, "medium": true, "low": true}

var validMechanisms = map[string]bool{
	"direct_action": true,
	"directive":     true,
	"enforcement":   true,
	"funding":       true,
	"rulemaking":    true,
	"litigation":    true,
	"oversight":     true,
	"other":         true,
}

// DateDelta is a relative date as emitted by the extractor, e.g. "within 90
// days of the article".
type DateDelta struct {
	FromDate    string `json:"from_date"`
	DaysDelta   int    `json:"days_delta"`
	WeeksDelta  int    `json:"weeks_delta"`
	MonthsDelta int    `json:"months_delta"`
	YearsDelta  int    `json:"years_delta"`
}

// DateInput accepts either an ISO date string or a DateDelta object.
type DateInput struct {
	Date  string
	Delta *DateDelta
}

func (d *DateInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = DateInput{}
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var delta DateDelta
		if err := json.Unmarshal(data, &delta); err != nil {
			return fmt.Errorf("failed to decode date delta: %w", err)
		}
		*d = DateInput{Delta: &delta}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode date: %w", err)
	}
	*d = DateInput{Date: s}
	return nil
}

// Resolve returns the absolute date, or false when it cannot be read.
func (d *DateInput) Resolve(loc *time.Location) (time.Time, bool) {
	if d == nil {
		return time.Time{}, false
	}
	if d.Delta == nil {
		return ParseDateOrAbsent(d.Date, loc)
	}

	from, ok := ParseDateOrAbsent(d.Delta.FromDate, loc)
	if !ok {
		return time.Time{}, false
	}
	days := d.Delta.DaysDelta + 7*d.Delta.WeeksDelta
	return from.AddDate(d.Delta.YearsDelta, d.Delta.MonthsDelta, days), true
}

// NewClaim is the shape produced by the extraction service.
type NewClaim struct {
	Type                    string     `json:"type"`
	Claim                   string     `json:"claim"`
	VerbatimClaim           string     `json:"verbatim_claim"`
	CompletionCondition     string     `json:"completion_condition"`
	CompletionConditionDate *DateInput `json:"completion_condition_date"`
	EventDate               *DateInput `json:"event_date"`
	ArticleID               string     `json:"article_id"`
	FollowUpWorthy          bool       `json:"follow_up_worthy"`
	Priority                string     `json:"priority"`
	Mechanism               string     `json:"mechanism"`
}

// NormalizeNew validates an extracted claim and fixes its dates once, at
// creation. Deadlines are kept for promises only and event dates for
// statements only; a promise without a readable deadline becomes a goal.
func NormalizeNew(in NewClaim, loc *time.Location) (Claim, error) {
	claimType := ClaimType(strings.ToLower(strings.TrimSpace(in.Type)))
	if !claimType.Valid() {
		return Claim{}, fmt.Errorf("invalid claim type: %q", in.Type)
	}
	if strings.TrimSpace(in.Claim) == "" {
		return Claim{}, fmt.Errorf("claim text is required")
	}
	if strings.TrimSpace(in.ArticleID) == "" {
		return Claim{}, fmt.Errorf("article_id is required")
	}

	c := Claim{
		Type:                claimType,
		Text:                strings.TrimSpace(in.Claim),
		VerbatimClaim:       in.VerbatimClaim,
		CompletionCondition: in.CompletionCondition,
		ArticleID:           in.ArticleID,
		FollowUpWorthy:      in.FollowUpWorthy,
		Priority:            strings.ToLower(strings.TrimSpace(in.Priority)),
		Mechanism:           strings.ToLower(strings.TrimSpace(in.Mechanism)),
	}

	switch c.Type {
	case TypePromise:
		c.CompletionConditionDate = optionalTime(in.CompletionConditionDate.Resolve(loc))
		if c.CompletionConditionDate == nil {
			c.Type = TypeGoal
		}
	case TypeStatement:
		c.EventDate = optionalTime(in.EventDate.Resolve(loc))
	}

	if c.Priority != "" && !validPriorities[c.Priority] {
		return Claim{}, fmt.Errorf("invalid priority: %q", in.Priority)
	}
	if !c.FollowUpWorthy && c.Priority == "high" {
		c.Priority = "medium"
	}
	if c.Mechanism != "" && !validMechanisms[c.Mechanism] {
		c.Mechanism = "other"
	}

	return c, nil
}
