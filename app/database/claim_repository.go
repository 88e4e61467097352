package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lysyi3m/claim-tracker/app/claims"
)

var claimColumns = []string{
	"id", "type", "claim", "verbatim_claim", "completion_condition",
	"completion_condition_date", "event_date", "article_id",
	"follow_up_worthy", "priority", "mechanism", "created_at",
}

type ClaimRepo struct {
	db *DB
}

func NewClaimRepository(db *DB) *ClaimRepo {
	return &ClaimRepo{db: db}
}

func (r *ClaimRepo) GetClaim(ctx context.Context, id string) (*claims.Claim, error) {
	query, args, err := builder.
		Select(claimColumns...).
		From("claims").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claim query: %w", err)
	}

	claim, err := r.scan(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return claim, nil
}

func (r *ClaimRepo) ListClaims(ctx context.Context, filter ClaimFilter) ([]claims.Claim, error) {
	q := builder.Select(claimColumns...).From("claims").OrderBy("created_at", "id")

	if len(filter.IDs) > 0 {
		q = q.Where(sq.Eq{"id": filter.IDs})
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		q = q.Where(sq.Eq{"type": types})
	}
	if filter.ArticleID != "" {
		q = q.Where(sq.Eq{"article_id": filter.ArticleID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claims query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var result []claims.Claim
	for rows.Next() {
		claim, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim row: %w", err)
		}
		result = append(result, *claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claim rows: %w", err)
	}

	return result, nil
}

// CreateClaim stores an already normalized claim. Its id and created_at are
// assigned here when empty.
func (r *ClaimRepo) CreateClaim(ctx context.Context, claim claims.Claim) (*claims.Claim, error) {
	if !claim.Type.Valid() {
		return nil, fmt.Errorf("invalid claim type: %q", claim.Type)
	}
	if claim.ID == "" {
		claim.ID = uuid.NewString()
	}
	if claim.CreatedAt == nil {
		now := time.Now().UTC()
		claim.CreatedAt = &now
	}

	query, args, err := builder.
		Insert("claims").
		Columns(claimColumns...).
		Values(
			claim.ID, string(claim.Type), claim.Text, claim.VerbatimClaim, claim.CompletionCondition,
			nullDate(claim.CompletionConditionDate), nullDate(claim.EventDate), claim.ArticleID,
			claim.FollowUpWorthy, claim.Priority, claim.Mechanism, formatTime(*claim.CreatedAt),
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claim insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert claim: %w", err)
	}

	return &claim, nil
}

func (r *ClaimRepo) CountByType(ctx context.Context) (map[claims.ClaimType]int, error) {
	query, args, err := builder.
		Select("type", "COUNT(*)").
		From("claims").
		GroupBy("type").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count claims: %w", err)
	}
	defer rows.Close()

	counts := make(map[claims.ClaimType]int)
	for rows.Next() {
		var claimType string
		var count int
		if err := rows.Scan(&claimType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[claims.ClaimType(claimType)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating count rows: %w", err)
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ClaimRepo) scan(row rowScanner) (*claims.Claim, error) {
	var claim claims.Claim
	var claimType string
	var deadline, eventDate sql.NullString
	var createdAt string

	err := row.Scan(
		&claim.ID, &claimType, &claim.Text, &claim.VerbatimClaim, &claim.CompletionCondition,
		&deadline, &eventDate, &claim.ArticleID,
		&claim.FollowUpWorthy, &claim.Priority, &claim.Mechanism, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	claim.Type = claims.ClaimType(claimType)
	claim.CompletionConditionDate = claims.OptionalDate(deadline.String, r.db.loc)
	claim.EventDate = claims.OptionalDate(eventDate.String, r.db.loc)
	claim.CreatedAt = claims.OptionalTime(createdAt, r.db.loc)

	return &claim, nil
}
