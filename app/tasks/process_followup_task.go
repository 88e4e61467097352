package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/claim-tracker/app/claims"
	"github.com/lysyi3m/claim-tracker/app/database"
	"github.com/lysyi3m/claim-tracker/app/verifier"
)

// ProcessFollowupTask verifies one due followup and closes it with the
// outcome. A followup closed by someone else in the meantime is not an error.
type ProcessFollowupTask struct {
	Task
	Followup claims.Followup
	repos    database.Repositories
	verifier Verifier
}

func NewProcessFollowupTask(followup claims.Followup, repos database.Repositories, v Verifier) *ProcessFollowupTask {
	return &ProcessFollowupTask{
		Task:     NewTask(TaskTypeProcessFollowup, followup.ID),
		Followup: followup,
		repos:    repos,
		verifier: v,
	}
}

func (t *ProcessFollowupTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	claim, err := t.repos.Claims.GetClaim(ctx, t.Followup.ClaimID)
	if err != nil {
		return fmt.Errorf("failed to get claim: %w", err)
	}
	if claim == nil {
		slog.Warn("Followup references a missing claim, skipping", "followup_id", t.Followup.ID, "claim_id", t.Followup.ClaimID)
		return nil
	}

	req, err := t.buildRequest(ctx, *claim)
	if err != nil {
		return err
	}

	result, err := t.verifier.Verify(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to verify claim: %w", err)
	}

	closure, err := t.repos.Followups.CloseFollowup(ctx, t.Followup.ID, result, time.Now())
	if errors.Is(err, claims.ErrFollowupClosed) {
		slog.Debug("Followup already processed", "followup_id", t.Followup.ID)
		return nil
	}
	if errors.Is(err, claims.ErrFollowupNotFound) {
		slog.Warn("Followup disappeared before close", "followup_id", t.Followup.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to close followup: %w", err)
	}

	next := ""
	if closure.Next != nil {
		next = claims.FormatDate(*closure.Next.FollowUpDate)
	}

	slog.Info("Task completed",
		"type", "ProcessFollowup",
		"followup_id", t.Followup.ID,
		"claim_id", claim.ID,
		"duration", t.GetDuration(),
		"verdict", result.Verdict,
		"update_id", closure.Update.ID,
		"next_check", next)

	return nil
}

func (t *ProcessFollowupTask) buildRequest(ctx context.Context, claim claims.Claim) (verifier.Request, error) {
	req := verifier.Request{
		ClaimID:             claim.ID,
		FollowupID:          t.Followup.ID,
		Type:                string(claim.Type),
		Claim:               claim.Text,
		VerbatimClaim:       claim.VerbatimClaim,
		CompletionCondition: claim.CompletionCondition,
	}
	if claim.CompletionConditionDate != nil {
		req.CompletionConditionDate = claims.FormatDate(*claim.CompletionConditionDate)
	}
	if t.Followup.FollowUpDate != nil {
		req.FollowUpDate = claims.FormatDate(*t.Followup.FollowUpDate)
	}

	article, err := t.repos.Articles.GetArticle(ctx, claim.ArticleID)
	if err != nil {
		return req, fmt.Errorf("failed to get article: %w", err)
	}
	if article != nil {
		req.ArticleTitle = article.Title
		req.ArticleLink = article.Link
	}

	updates, err := t.repos.Updates.ListUpdates(ctx, []string{claim.ID})
	if err != nil {
		return req, fmt.Errorf("failed to list updates: %w", err)
	}
	if u, ok := claims.LatestUpdates(updates)[claim.ID]; ok {
		req.PreviousVerdict = u.Verdict
	}

	return req, nil
}
