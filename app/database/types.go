package database

import (
	"time"

	"github.com/lysyi3m/claim-tracker/app/claims"
)

type ClaimFilter struct {
	IDs       []string
	Types     []claims.ClaimType
	ArticleID string
}

type FollowupFilter struct {
	ClaimIDs []string
	OpenOnly bool
	DueBy    *time.Time // follow_up_date on or before this civil date
	Limit    uint
}

// NewFollowup is one check to schedule; duplicates of an existing
// (claim, date) pair are skipped on insert.
type NewFollowup struct {
	ClaimID string
	Date    time.Time
	Note    string
}
