package api

import (
	"time"

	"github.com/lysyi3m/claim-tracker/app/claims"
	"github.com/lysyi3m/claim-tracker/app/verdict"
)

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := claims.FormatDate(*t)
	return &s
}

func timePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newClaimView(c claims.Claim) claimView {
	return claimView{
		ID:                      c.ID,
		Type:                    string(c.Type),
		Claim:                   c.Text,
		VerbatimClaim:           c.VerbatimClaim,
		CompletionCondition:     c.CompletionCondition,
		CompletionConditionDate: datePtr(c.CompletionConditionDate),
		EventDate:               datePtr(c.EventDate),
		ArticleID:               c.ArticleID,
		FollowUpWorthy:          c.FollowUpWorthy,
		Priority:                c.Priority,
		Mechanism:               c.Mechanism,
		CreatedAt:               timePtr(c.CreatedAt),
	}
}

func newCountdownEntryView(e claims.CountdownEntry) countdownEntryView {
	return countdownEntryView{
		Claim:     newClaimView(e.Claim),
		DueDate:   claims.FormatDate(e.DueDate),
		EventAt:   e.EventAt.Format(time.RFC3339),
		Verdict:   e.Verdict,
		NextCheck: datePtr(e.NextCheck),
	}
}

func newArticleView(a *claims.Article) *articleView {
	if a == nil {
		return nil
	}
	return &articleView{
		ID:          a.ID,
		Title:       a.Title,
		Link:        a.Link,
		PublishDate: timePtr(a.PublishDate),
	}
}

func newFollowupView(f claims.Followup) followupView {
	return followupView{
		ID:                f.ID,
		ClaimID:           f.ClaimID,
		FollowUpDate:      datePtr(f.FollowUpDate),
		ProcessedAt:       timePtr(f.ProcessedAt),
		ProcessedUpdateID: stringPtr(f.ProcessedUpdateID),
		Note:              f.Note,
	}
}

func newUpdateView(u claims.Update) updateView {
	return updateView{
		ID:          u.ID,
		ClaimID:     u.ClaimID,
		Verdict:     u.Verdict,
		Normalized:  verdict.Normalize(u.Verdict),
		CreatedAt:   timePtr(u.CreatedAt),
		ModelOutput: u.Output,
	}
}

func newEventView(e claims.Event) eventView {
	date := e.Date.Format(time.RFC3339)
	if e.Kind != claims.EventUpdate {
		date = claims.FormatDate(e.Date)
	}
	return eventView{
		Kind:              string(e.Kind),
		Date:              date,
		ID:                e.ID,
		Verdict:           e.Verdict,
		Text:              e.Text,
		Sources:           e.Sources,
		Overdue:           e.Overdue,
		Processed:         e.Processed,
		ProcessedUpdateID: e.ProcessedUpdateID,
		First:             e.First,
		Last:              e.Last,
	}
}
