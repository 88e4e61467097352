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

type ArticleRepo struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// GetArticle returns nil without an error when the article does not exist.
func (r *ArticleRepo) GetArticle(ctx context.Context, id string) (*claims.Article, error) {
	query, args, err := builder.
		Select("id", "title", "link", "publish_date").
		From("articles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article query: %w", err)
	}

	var article claims.Article
	var publishDate sql.NullString
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&article.ID, &article.Title, &article.Link, &publishDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	article.PublishDate = claims.OptionalTime(publishDate.String, r.db.loc)
	return &article, nil
}

// CreateArticle inserts the article or refreshes an existing one with the
// same id.
func (r *ArticleRepo) CreateArticle(ctx context.Context, article claims.Article) (*claims.Article, error) {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}

	var publishDate any
	if article.PublishDate != nil {
		publishDate = formatTime(*article.PublishDate)
	}

	query, args, err := builder.
		Insert("articles").
		Columns("id", "title", "link", "publish_date", "created_at").
		Values(article.ID, article.Title, article.Link, publishDate, formatTime(time.Now())).
		Suffix("ON CONFLICT (id) DO UPDATE SET title = excluded.title, link = excluded.link, publish_date = excluded.publish_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to upsert article: %w", err)
	}

	return &article, nil
}
