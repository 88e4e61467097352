package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/claim-tracker/app/claims"
	"github.com/lysyi3m/claim-tracker/app/database"
	"github.com/lysyi3m/claim-tracker/app/verdict"
)

// PlanFollowupsTask gives promises that ran out of scheduled checks the rest
// of their plan. It is a sweep over all promises and is safe to repeat.
type PlanFollowupsTask struct {
	Task
	repos   database.Repositories
	planner *claims.Planner
	clock   *claims.Clock
}

func NewPlanFollowupsTask(repos database.Repositories, planner *claims.Planner, clock *claims.Clock) *PlanFollowupsTask {
	return &PlanFollowupsTask{
		Task:    NewTask(TaskTypePlanFollowups, ""),
		repos:   repos,
		planner: planner,
		clock:   clock,
	}
}

func (t *PlanFollowupsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	promises, err := t.repos.Claims.ListClaims(ctx, database.ClaimFilter{Types: []claims.ClaimType{claims.TypePromise}})
	if err != nil {
		return fmt.Errorf("failed to list promises: %w", err)
	}
	if len(promises) == 0 {
		slog.Debug("No promises to plan")
		return nil
	}

	ids := make([]string, len(promises))
	for i, c := range promises {
		ids[i] = c.ID
	}

	followups, err := t.repos.Followups.ListFollowups(ctx, database.FollowupFilter{ClaimIDs: ids})
	if err != nil {
		return fmt.Errorf("failed to list followups: %w", err)
	}
	updates, err := t.repos.Updates.ListUpdates(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to list updates: %w", err)
	}

	byClaim := make(map[string][]claims.Followup)
	for _, f := range followups {
		byClaim[f.ClaimID] = append(byClaim[f.ClaimID], f)
	}
	latest := claims.LatestUpdates(updates)
	today := t.clock.Today()

	planned := 0
	var pending []database.NewFollowup
	for _, c := range promises {
		u, ok := latest[c.ID]
		terminal := ok && verdict.IsTerminal(u.Verdict)
		if !t.planner.NeedsAutoplan(c, byClaim[c.ID], terminal, today) {
			continue
		}

		start, err := PlanStart(ctx, t.repos.Articles, c, today)
		if err != nil {
			return err
		}

		for _, d := range t.planner.Plan(c, start, today) {
			pending = append(pending, database.NewFollowup{ClaimID: c.ID, Date: d, Note: "autoplan"})
		}
		planned++
	}

	created, err := t.repos.Followups.CreateFollowups(ctx, pending)
	if err != nil {
		return fmt.Errorf("failed to create followups: %w", err)
	}

	slog.Info("Task completed",
		"type", "PlanFollowups",
		"duration", t.GetDuration(),
		"promises", len(promises),
		"planned", planned,
		"created", len(created))

	return nil
}

// PlanStart is the day a claim's schedule counts from: the article's
// publish date, else the claim's creation, else today.
func PlanStart(ctx context.Context, articles database.ArticleRepository, c claims.Claim, today time.Time) (time.Time, error) {
	article, err := articles.GetArticle(ctx, c.ArticleID)
	if err != nil {
		return today, fmt.Errorf("failed to get article: %w", err)
	}
	if article != nil && article.PublishDate != nil {
		return *article.PublishDate, nil
	}
	if c.CreatedAt != nil {
		return *c.CreatedAt, nil
	}
	return today, nil
}
