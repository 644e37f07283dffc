package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("course not found")

func Create(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses
		(course_id, name, description, image_url, price, trainer_id, start_date, end_date, created_at, updated_at)
	VALUES
		(:course_id, :name, :description, :image_url, :price, :trainer_id, :start_date, :end_date, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	const q = `SELECT * FROM courses WHERE course_id = $1`

	var c Course
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrNotFound
		}
		return Course{}, fmt.Errorf("selecting course[%s]: %w", id, err)
	}
	return c, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	UPDATE courses SET
		name = :name,
		description = :description,
		image_url = :image_url,
		price = :price,
		start_date = :start_date,
		end_date = :end_date,
		updated_at = :updated_at,
		version = version + 1
	WHERE course_id = :course_id AND version = :version`

	res, err := sqlx.NamedExecContext(ctx, db, q, c)
	if err != nil {
		return fmt.Errorf("updating course[%s]: %w", c.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns how many courses match the search term; an empty term
// matches everything.
func Count(ctx context.Context, db sqlx.ExtContext, term string) (int, error) {
	const q = `
	SELECT COUNT(*) FROM courses
	WHERE $1 = '' OR name ILIKE '%' || $1 || '%'`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, term); err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return n, nil
}

func List(ctx context.Context, db sqlx.ExtContext, term string, limit, offset int) ([]Course, error) {
	const q = `
	SELECT * FROM courses
	WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
	ORDER BY start_date, course_id
	LIMIT $2 OFFSET $3`

	courses := []Course{}
	if err := sqlx.SelectContext(ctx, db, &courses, q, term, limit, offset); err != nil {
		return nil, fmt.Errorf("selecting courses: %w", err)
	}
	return courses, nil
}

// Enroll records that the user owns the course. Buying the same
// course twice is absorbed here rather than failing fulfillment.
func Enroll(ctx context.Context, db sqlx.ExtContext, userID, courseID string, at time.Time) error {
	const q = `
	INSERT INTO enrollments (user_id, course_id, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT DO NOTHING`

	if _, err := db.ExecContext(ctx, q, userID, courseID, at); err != nil {
		return fmt.Errorf("enrolling user[%s] in course[%s]: %w", userID, courseID, err)
	}
	return nil
}

func ListOwned(ctx context.Context, db sqlx.ExtContext, userID string) ([]Course, error) {
	const q = `
	SELECT c.* FROM courses AS c
	JOIN enrollments AS e ON e.course_id = c.course_id
	WHERE e.user_id = $1
	ORDER BY e.created_at`

	courses := []Course{}
	if err := sqlx.SelectContext(ctx, db, &courses, q, userID); err != nil {
		return nil, fmt.Errorf("selecting owned courses: %w", err)
	}
	return courses, nil
}

func IsOwned(ctx context.Context, db sqlx.ExtContext, userID, courseID string) (bool, error) {
	const q = `
	SELECT EXISTS (
		SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2
	)`

	var owned bool
	if err := sqlx.GetContext(ctx, db, &owned, q, userID, courseID); err != nil {
		return false, fmt.Errorf("checking ownership: %w", err)
	}
	return owned, nil
}
