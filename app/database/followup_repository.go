package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lysyi3m/claim-tracker/app/claims"
)

var followupColumns = []string{
	"id", "claim_id", "follow_up_date", "processed_at", "processed_update_id", "note", "created_at",
}

type FollowupRepo struct {
	db *DB
}

func NewFollowupRepository(db *DB) *FollowupRepo {
	return &FollowupRepo{db: db}
}

func (r *FollowupRepo) GetFollowup(ctx context.Context, id string) (*claims.Followup, error) {
	f, err := r.get(ctx, r.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get followup: %w", err)
	}
	return f, nil
}

func (r *FollowupRepo) ListFollowups(ctx context.Context, filter FollowupFilter) ([]claims.Followup, error) {
	q := builder.Select(followupColumns...).From("followups").OrderBy("follow_up_date", "id")

	if len(filter.ClaimIDs) > 0 {
		q = q.Where(sq.Eq{"claim_id": filter.ClaimIDs})
	}
	if filter.OpenOnly {
		q = q.Where(sq.Eq{"processed_at": nil})
	}
	if filter.DueBy != nil {
		q = q.Where(sq.LtOrEq{"follow_up_date": formatDate(claims.DateOnly(*filter.DueBy, r.db.loc))})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build followups query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list followups: %w", err)
	}
	defer rows.Close()

	var result []claims.Followup
	for rows.Next() {
		f, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan followup row: %w", err)
		}
		result = append(result, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating followup rows: %w", err)
	}

	return result, nil
}

// CreateFollowups schedules checks in one transaction and returns the ones
// actually inserted. A (claim, date) pair that already exists is skipped,
// whether that followup is open or closed.
func (r *FollowupRepo) CreateFollowups(ctx context.Context, followups []NewFollowup) ([]claims.Followup, error) {
	if len(followups) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var created []claims.Followup
	for _, nf := range followups {
		f, err := r.insert(ctx, tx, nf.ClaimID, nf.Date, nf.Note, now)
		if err != nil {
			return nil, err
		}
		if f != nil {
			created = append(created, *f)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit followups: %w", err)
	}

	return created, nil
}

// CountOpen returns the number of open followups and how many of them are
// dated before today.
func (r *FollowupRepo) CountOpen(ctx context.Context, today time.Time) (int, int, error) {
	query, args, err := builder.
		Select("COUNT(*)").
		Column(sq.Expr("COALESCE(SUM(CASE WHEN follow_up_date < ? THEN 1 ELSE 0 END), 0)", formatDate(claims.DateOnly(today, r.db.loc)))).
		From("followups").
		Where(sq.Eq{"processed_at": nil}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var open, overdue int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&open, &overdue); err != nil {
		return 0, 0, fmt.Errorf("failed to count open followups: %w", err)
	}

	return open, overdue, nil
}

// CloseFollowup records a verification outcome for an open followup. The
// processed_at flip is a compare-and-set inside the transaction, so of two
// concurrent callers exactly one inserts an update and the other gets
// claims.ErrFollowupClosed.
func (r *FollowupRepo) CloseFollowup(ctx context.Context, followupID string, v claims.Verification, at time.Time) (*claims.Closure, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	followup, err := r.get(ctx, tx, followupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get followup: %w", err)
	}
	if followup == nil {
		return nil, claims.ErrFollowupNotFound
	}
	if !followup.IsOpen() {
		return nil, claims.ErrFollowupClosed
	}

	at = at.UTC()
	update := claims.Update{
		ID:        uuid.NewString(),
		ClaimID:   followup.ClaimID,
		Verdict:   v.Verdict,
		CreatedAt: &at,
		Output:    v.Output,
	}

	query, args, err := builder.
		Update("followups").
		Set("processed_at", formatTime(at)).
		Set("processed_update_id", update.ID).
		Where(sq.Eq{"id": followupID, "processed_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build followup update: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to mark followup processed: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return nil, claims.ErrFollowupClosed
	}

	output, err := json.Marshal(update.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model output: %w", err)
	}

	query, args, err = builder.
		Insert("updates").
		Columns("id", "claim_id", "followup_id", "verdict", "model_output", "created_at").
		Values(update.ID, update.ClaimID, followupID, update.Verdict, string(output), formatTime(at)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert update: %w", err)
	}

	closure := &claims.Closure{Update: update}

	// Only a date after the day of the close opens a new check.
	if next, ok := v.Output.NextCheck(r.db.loc); ok && next.After(claims.Today(at, r.db.loc)) {
		closure.Next, err = r.insert(ctx, tx, followup.ClaimID, next, "suggested by verification", at)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit followup close: %w", err)
	}

	followup.ProcessedAt = &at
	followup.ProcessedUpdateID = update.ID
	closure.Followup = *followup

	return closure, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *FollowupRepo) get(ctx context.Context, q queryer, id string) (*claims.Followup, error) {
	query, args, err := builder.
		Select(followupColumns...).
		From("followups").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	f, err := r.scan(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

// insert returns nil when the (claim, date) pair is already scheduled.
func (r *FollowupRepo) insert(ctx context.Context, ex execer, claimID string, date time.Time, note string, now time.Time) (*claims.Followup, error) {
	date = claims.DateOnly(date, r.db.loc)
	f := claims.Followup{
		ID:           uuid.NewString(),
		ClaimID:      claimID,
		FollowUpDate: &date,
		Note:         note,
		CreatedAt:    &now,
	}

	query, args, err := builder.
		Insert("followups").
		Columns("id", "claim_id", "follow_up_date", "note", "created_at").
		Values(f.ID, f.ClaimID, formatDate(date), f.Note, formatTime(now)).
		Suffix("ON CONFLICT (claim_id, follow_up_date) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build followup insert: %w", err)
	}

	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert followup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	return &f, nil
}

func (r *FollowupRepo) scan(row rowScanner) (*claims.Followup, error) {
	var f claims.Followup
	var date string
	var processedAt, processedUpdateID sql.NullString
	var createdAt string

	if err := row.Scan(&f.ID, &f.ClaimID, &date, &processedAt, &processedUpdateID, &f.Note, &createdAt); err != nil {
		return nil, err
	}

	f.FollowUpDate = claims.OptionalDate(date, r.db.loc)
	f.ProcessedAt = claims.OptionalTime(processedAt.String, r.db.loc)
	f.ProcessedUpdateID = processedUpdateID.String
	f.CreatedAt = claims.OptionalTime(createdAt, r.db.loc)

	return &f, nil
}
