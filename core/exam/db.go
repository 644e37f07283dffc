package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound           = errors.New("exam not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

func Create(ctx context.Context, db sqlx.ExtContext, e Exam) error {
	const q = `
	INSERT INTO exams
		(exam_id, course_id, name, description, start_date, end_date, max_points, pass_points, created_at, updated_at)
	VALUES
		(:exam_id, :course_id, :name, :description, :start_date, :end_date, :max_points, :pass_points, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, e); err != nil {
		return fmt.Errorf("inserting exam: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Exam, error) {
	const q = `SELECT * FROM exams WHERE exam_id = $1`

	var e Exam
	if err := sqlx.GetContext(ctx, db, &e, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrNotFound
		}
		return Exam{}, fmt.Errorf("selecting exam[%s]: %w", id, err)
	}
	return e, nil
}

func ListByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Exam, error) {
	const q = `SELECT * FROM exams WHERE course_id = $1 ORDER BY start_date`

	exams := []Exam{}
	if err := sqlx.SelectContext(ctx, db, &exams, q, courseID); err != nil {
		return nil, fmt.Errorf("selecting exams of course[%s]: %w", courseID, err)
	}
	return exams, nil
}

// UpsertSubmission keeps one submission per student and exam; a
// resubmission replaces the previous upload and voids its grade.
func UpsertSubmission(ctx context.Context, db sqlx.ExtContext, sub Submission) error {
	const q = `
	INSERT INTO submissions
		(submission_id, exam_id, user_id, file_path, submitted_at)
	VALUES
		(:submission_id, :exam_id, :user_id, :file_path, :submitted_at)
	ON CONFLICT (exam_id, user_id) DO UPDATE SET
		file_path = EXCLUDED.file_path,
		submitted_at = EXCLUDED.submitted_at,
		grade = NULL,
		graded_at = NULL`

	if _, err := sqlx.NamedExecContext(ctx, db, q, sub); err != nil {
		return fmt.Errorf("upserting submission: %w", err)
	}
	return nil
}

func FetchSubmission(ctx context.Context, db sqlx.ExtContext, id string) (Submission, error) {
	const q = `SELECT * FROM submissions WHERE submission_id = $1`

	var sub Submission
	if err := sqlx.GetContext(ctx, db, &sub, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, fmt.Errorf("selecting submission[%s]: %w", id, err)
	}
	return sub, nil
}

func ListSubmissions(ctx context.Context, db sqlx.ExtContext, examID string) ([]Submission, error) {
	const q = `SELECT * FROM submissions WHERE exam_id = $1 ORDER BY submitted_at`

	subs := []Submission{}
	if err := sqlx.SelectContext(ctx, db, &subs, q, examID); err != nil {
		return nil, fmt.Errorf("selecting submissions of exam[%s]: %w", examID, err)
	}
	return subs, nil
}

func Grade(ctx context.Context, db sqlx.ExtContext, id string, grade int) error {
	const q = `
	UPDATE submissions SET
		grade = $2,
		graded_at = NOW()
	WHERE submission_id = $1`

	res, err := db.ExecContext(ctx, q, id, grade)
	if err != nil {
		return fmt.Errorf("grading submission[%s]: %w", id, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}
