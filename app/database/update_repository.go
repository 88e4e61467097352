package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/lysyi3m/claim-tracker/app/claims"
)

type UpdateRepo struct {
	db *DB
}

func NewUpdateRepository(db *DB) *UpdateRepo {
	return &UpdateRepo{db: db}
}

// ListUpdates returns the updates of the given claims, or every update when
// claimIDs is empty. A model output that does not decode is kept as plain
// text.
func (r *UpdateRepo) ListUpdates(ctx context.Context, claimIDs []string) ([]claims.Update, error) {
	q := builder.
		Select("id", "claim_id", "verdict", "model_output", "created_at").
		From("updates").
		OrderBy("created_at", "id")
	if len(claimIDs) > 0 {
		q = q.Where(sq.Eq{"claim_id": claimIDs})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build updates query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list updates: %w", err)
	}
	defer rows.Close()

	var result []claims.Update
	for rows.Next() {
		var u claims.Update
		var output, createdAt string
		if err := rows.Scan(&u.ID, &u.ClaimID, &u.Verdict, &output, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan update row: %w", err)
		}

		if err := json.Unmarshal([]byte(output), &u.Output); err != nil {
			slog.Debug("Undecodable model output, keeping raw text", "update_id", u.ID, "error", err)
			u.Output = claims.PlainOutput(output)
		}
		u.CreatedAt = claims.OptionalTime(createdAt, r.db.loc)

		result = append(result, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating update rows: %w", err)
	}

	return result, nil
}

func (r *UpdateRepo) CountUpdates(ctx context.Context) (int, error) {
	query, args, err := builder.Select("COUNT(*)").From("updates").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count updates: %w", err)
	}

	return count, nil
}
