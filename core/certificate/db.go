package certificate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("certificate not found")

func Issue(ctx context.Context, db sqlx.ExtContext, cert Certificate) error {
	const q = `
	INSERT INTO certificates
		(certificate_id, user_id, course_id, exam_id, grade, issued_on)
	VALUES
		(:certificate_id, :user_id, :course_id, :exam_id, :grade, :issued_on)
	ON CONFLICT (user_id, course_id) DO NOTHING`

	if _, err := sqlx.NamedExecContext(ctx, db, q, cert); err != nil {
		return fmt.Errorf("inserting certificate: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Certificate, error) {
	const q = `SELECT * FROM certificates WHERE certificate_id = $1`

	var cert Certificate
	if err := sqlx.GetContext(ctx, db, &cert, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Certificate{}, ErrNotFound
		}
		return Certificate{}, fmt.Errorf("selecting certificate[%s]: %w", id, err)
	}
	return cert, nil
}

func ListByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Certificate, error) {
	const q = `SELECT * FROM certificates WHERE user_id = $1 ORDER BY issued_on DESC`

	certs := []Certificate{}
	if err := sqlx.SelectContext(ctx, db, &certs, q, userID); err != nil {
		return nil, fmt.Errorf("selecting certificates of user[%s]: %w", userID, err)
	}
	return certs, nil
}
