package token

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/vmihailov/learnhub/api/background"
	"github.com/vmihailov/learnhub/api/web"
	"github.com/vmihailov/learnhub/api/weberr"
	"github.com/vmihailov/learnhub/core/user"
	"github.com/vmihailov/learnhub/database"
	"github.com/vmihailov/learnhub/validate"
)

type Mailer interface {
	SendActivationToken(token string, to string) error
	SendRecoveryToken(token string, to string) error
}

type TokenNew struct {
	Email string `json:"email" validate:"required,email"`
	Scope string `json:"scope" validate:"required,oneof=activation recovery"`
}

type Activation struct {
	Token string `json:"token" validate:"required"`
}

type Recovery struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// HandleToken issues a fresh activation or recovery token and mails
// it out on a background goroutine. The response is 204 regardless of
// whether the email exists, so the endpoint cannot be used to probe
// accounts.
func HandleToken(db *sqlx.DB, mailer Mailer, timeout time.Duration, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var tn TokenNew
		if err := web.Decode(w, r, &tn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(tn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		usr, err := user.FetchByEmail(ctx, db, tn.Email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return web.Respond(ctx, w, nil, http.StatusNoContent)
			}
			return err
		}

		tok, err := Generate(usr.ID, tn.Scope, timeout)
		if err != nil {
			return err
		}

		if err := Create(ctx, db, tok); err != nil {
			return err
		}

		bg.Run(func() error {
			if tok.Scope == ScopeActivation {
				return mailer.SendActivationToken(tok.Plain, usr.Email)
			}
			return mailer.SendRecoveryToken(tok.Plain, usr.Email)
		})

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleActivation(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var act Activation
		if err := web.Decode(w, r, &act); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(act); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		err := database.Transaction(db, func(tx sqlx.ExtContext) error {
			userID, err := Consume(ctx, tx, act.Token, ScopeActivation)
			if err != nil {
				return err
			}
			return user.Activate(ctx, tx, userID)
		})

		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleRecovery(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var rec Recovery
		if err := web.Decode(w, r, &rec); err != nil {
			return weberr.BadRequest(err)
		}

		if fields, err := validate.CheckFields(rec); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity, weberr.WithFields(fields))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(rec.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			userID, err := Consume(ctx, tx, rec.Token, ScopeRecovery)
			if err != nil {
				return err
			}
			return user.UpdatePassword(ctx, tx, userID, hash)
		})

		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
