package database

import (
	"context"
	"time"

	"github.com/lysyi3m/claim-tracker/app/claims"
)

type ArticleRepository interface {
	GetArticle(ctx context.Context, id string) (*claims.Article, error)
	CreateArticle(ctx context.Context, article claims.Article) (*claims.Article, error)
}

type ClaimRepository interface {
	GetClaim(ctx context.Context, id string) (*claims.Claim, error)
	ListClaims(ctx context.Context, filter ClaimFilter) ([]claims.Claim, error)
	CreateClaim(ctx context.Context, claim claims.Claim) (*claims.Claim, error)
	CountByType(ctx context.Context) (map[claims.ClaimType]int, error)
}

type FollowupRepository interface {
	claims.FollowupCloser

	GetFollowup(ctx context.Context, id string) (*claims.Followup, error)
	ListFollowups(ctx context.Context, filter FollowupFilter) ([]claims.Followup, error)
	CreateFollowups(ctx context.Context, followups []NewFollowup) ([]claims.Followup, error)
	CountOpen(ctx context.Context, today time.Time) (open int, overdue int, err error)
}

type UpdateRepository interface {
	ListUpdates(ctx context.Context, claimIDs []string) ([]claims.Update, error)
	CountUpdates(ctx context.Context) (int, error)
}

var (
	_ ArticleRepository  = (*ArticleRepo)(nil)
	_ ClaimRepository    = (*ClaimRepo)(nil)
	_ FollowupRepository = (*FollowupRepo)(nil)
	_ UpdateRepository   = (*UpdateRepo)(nil)
)

// Repositories bundles the store access every component needs.
type Repositories struct {
	Articles  ArticleRepository
	Claims    ClaimRepository
	Followups FollowupRepository
	Updates   UpdateRepository
}

func NewRepositories(db *DB) Repositories {
	return Repositories{
		Articles:  NewArticleRepository(db),
		Claims:    NewClaimRepository(db),
		Followups: NewFollowupRepository(db),
		Updates:   NewUpdateRepository(db),
	}
}
