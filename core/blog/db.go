package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("article not found")

func Create(ctx context.Context, db sqlx.ExtContext, a Article) error {
	const q = `
	INSERT INTO articles
		(article_id, title, content, author_id, created_at, updated_at)
	VALUES
		(:article_id, :title, :content, :author_id, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, a); err != nil {
		return fmt.Errorf("inserting article: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Article, error) {
	const q = `SELECT * FROM articles WHERE article_id = $1`

	var a Article
	if err := sqlx.GetContext(ctx, db, &a, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Article{}, ErrNotFound
		}
		return Article{}, fmt.Errorf("selecting article[%s]: %w", id, err)
	}
	return a, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, a Article) error {
	const q = `
	UPDATE articles SET
		title = :title,
		content = :content,
		updated_at = :updated_at,
		version = version + 1
	WHERE article_id = :article_id AND version = :version`

	res, err := sqlx.NamedExecContext(ctx, db, q, a)
	if err != nil {
		return fmt.Errorf("updating article[%s]: %w", a.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM articles WHERE article_id = $1`

	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("deleting article[%s]: %w", id, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func Count(ctx context.Context, db sqlx.ExtContext, term string) (int, error) {
	const q = `
	SELECT COUNT(*) FROM articles
	WHERE $1 = '' OR title ILIKE '%' || $1 || '%'`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, term); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

func List(ctx context.Context, db sqlx.ExtContext, term string, limit, offset int) ([]Article, error) {
	const q = `
	SELECT * FROM articles
	WHERE $1 = '' OR title ILIKE '%' || $1 || '%'
	ORDER BY created_at DESC, article_id
	LIMIT $2 OFFSET $3`

	articles := []Article{}
	if err := sqlx.SelectContext(ctx, db, &articles, q, term, limit, offset); err != nil {
		return nil, fmt.Errorf("selecting articles: %w", err)
	}
	return articles, nil
}
