package api

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/lysyi3m/claim-tracker/app/claims"
	"github.com/lysyi3m/claim-tracker/app/database"
	"github.com/lysyi3m/claim-tracker/app/tasks"
	"github.com/lysyi3m/claim-tracker/app/verdict"
)

type Handler struct {
	repos       database.Repositories
	clock       *claims.Clock
	planner     *claims.Planner
	partitioner *claims.Partitioner
	timeline    *claims.TimelineBuilder
	resolver    *claims.DueDateResolver
	scheduler   tasks.TaskSchedulerInterface
	cache       *gocache.Cache
	cacheTTL    time.Duration
}

type claimView struct {
	ID                      string  `json:"id"`
	Type                    string  `json:"type"`
	Claim                   string  `json:"claim"`
	VerbatimClaim           string  `json:"verbatim_claim"`
	CompletionCondition     string  `json:"completion_condition"`
	CompletionConditionDate *string `json:"completion_condition_date"`
	EventDate               *string `json:"event_date"`
	ArticleID               string  `json:"article_id"`
	FollowUpWorthy          bool    `json:"follow_up_worthy"`
	Priority                string  `json:"priority,omitempty"`
	Mechanism               string  `json:"mechanism,omitempty"`
	CreatedAt               *string `json:"created_at"`
}

type countdownEntryView struct {
	Claim     claimView       `json:"claim"`
	DueDate   string          `json:"due_date"`
	EventAt   string          `json:"event_at"`
	Verdict   *verdict.Result `json:"verdict"`
	NextCheck *string         `json:"next_check"`
}

type countdownView struct {
	Upcoming []countdownEntryView `json:"upcoming"`
	Past     []countdownEntryView `json:"past"`
	Today    string               `json:"today"`
}

type claimDetailView struct {
	Claim     claimView       `json:"claim"`
	Article   *articleView    `json:"article"`
	DueDate   *string         `json:"due_date"`
	Verdict   *verdict.Result `json:"verdict"`
	NextCheck *string         `json:"next_check"`
	Followups []followupView  `json:"followups"`
	Updates   []updateView    `json:"updates"`
}

type articleView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	PublishDate *string `json:"publish_date"`
}

type followupView struct {
	ID                string  `json:"id"`
	ClaimID           string  `json:"claim_id"`
	FollowUpDate      *string `json:"follow_up_date"`
	ProcessedAt       *string `json:"processed_at"`
	ProcessedUpdateID *string `json:"processed_update_id"`
	Note              string  `json:"note,omitempty"`
}

type updateView struct {
	ID          string             `json:"id"`
	ClaimID     string             `json:"claim_id"`
	Verdict     string             `json:"verdict"`
	Normalized  verdict.Result     `json:"normalized"`
	CreatedAt   *string            `json:"created_at"`
	ModelOutput claims.ModelOutput `json:"model_output"`
}

type eventView struct {
	Kind              string          `json:"kind"`
	Date              string          `json:"date"`
	ID                string          `json:"id"`
	Verdict           *verdict.Result `json:"verdict,omitempty"`
	Text              string          `json:"text,omitempty"`
	Sources           []string        `json:"sources,omitempty"`
	Overdue           bool            `json:"overdue,omitempty"`
	Processed         bool            `json:"processed,omitempty"`
	ProcessedUpdateID string          `json:"processed_update_id,omitempty"`
	First             bool            `json:"first,omitempty"`
	Last              bool            `json:"last,omitempty"`
}

type statsView struct {
	Claims           map[string]int `json:"claims"`
	Verdicts         map[string]int `json:"verdicts"`
	Pending          int            `json:"pending"`
	Updates          int            `json:"updates"`
	OpenFollowups    int            `json:"open_followups"`
	OverdueFollowups int            `json:"overdue_followups"`
	Today            string         `json:"today"`
}

type articleRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	PublishDate string `json:"publish_date"`
}

type closeRequest struct {
	Verdict     string             `json:"verdict"`
	ModelOutput claims.ModelOutput `json:"model_output"`
}

type closeResponse struct {
	Followup followupView  `json:"followup"`
	Update   updateView    `json:"update"`
	Next     *followupView `json:"next"`
}
