package token

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vmihailov/learnhub/random"
)

const (
	ScopeActivation = "activation"
	ScopeRecovery   = "recovery"
)

var ErrNotFound = errors.New("token not found or expired")

// Token is stored hashed; the plaintext leaves the system only inside
// the email sent to the user.
type Token struct {
	Hash   []byte    `db:"hash"`
	UserID string    `db:"user_id"`
	Scope  string    `db:"scope"`
	Expiry time.Time `db:"expiry"`

	Plain string `db:"-"`
}

func Generate(userID, scope string, timeout time.Duration) (Token, error) {
	plain, err := random.StringSecure(26)
	if err != nil {
		return Token{}, fmt.Errorf("generating token: %w", err)
	}

	hash := sha256.Sum256([]byte(plain))
	return Token{
		Hash:   hash[:],
		UserID: userID,
		Scope:  scope,
		Expiry: time.Now().UTC().Add(timeout),
		Plain:  plain,
	}, nil
}

func Create(ctx context.Context, db sqlx.ExtContext, tok Token) error {
	const q = `
	INSERT INTO tokens
		(hash, user_id, scope, expiry)
	VALUES
		(:hash, :user_id, :scope, :expiry)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, tok); err != nil {
		return fmt.Errorf("inserting token: %w", err)
	}
	return nil
}

// Consume resolves a plaintext token to its user and burns every
// token the user holds in that scope.
func Consume(ctx context.Context, db sqlx.ExtContext, plain, scope string) (string, error) {
	hash := sha256.Sum256([]byte(plain))

	const q = `
	SELECT user_id FROM tokens
	WHERE hash = $1 AND scope = $2 AND expiry > NOW()`

	var userID string
	if err := sqlx.GetContext(ctx, db, &userID, q, hash[:], scope); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("selecting token: %w", err)
	}

	const del = `DELETE FROM tokens WHERE user_id = $1 AND scope = $2`
	if _, err := db.ExecContext(ctx, del, userID, scope); err != nil {
		return "", fmt.Errorf("deleting tokens of user[%s]: %w", userID, err)
	}

	return userID, nil
}
