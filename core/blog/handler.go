package blog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vmihailov/learnhub/api/web"
	"github.com/vmihailov/learnhub/api/weberr"
	"github.com/vmihailov/learnhub/core/claims"
	"github.com/vmihailov/learnhub/paging"
	"github.com/vmihailov/learnhub/validate"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		term := web.Query(r, "term")

		total, err := Count(ctx, db, term)
		if err != nil {
			return err
		}

		page := paging.New(
			web.QueryInt(r, "page", 1),
			web.QueryInt(r, "pageSize", paging.DefaultSize),
			total,
		)

		articles, err := List(ctx, db, term, page.Size, page.Offset())
		if err != nil {
			return err
		}

		listing := Listing{
			Items:        articles,
			Page:         page,
			PreviousPage: page.Previous(),
			NextPage:     page.Next(),
		}

		return web.Respond(ctx, w, listing, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		a, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, a, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var an ArticleNew
		if err := web.Decode(w, r, &an); err != nil {
			return weberr.BadRequest(err)
		}

		if fields, err := validate.CheckFields(an); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity, weberr.WithFields(fields))
		}

		now := time.Now().UTC()
		a := Article{
			ID:        validate.GenerateID(),
			Title:     an.Title,
			Content:   an.Content,
			AuthorID:  clm.UserID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, db, a); err != nil {
			return err
		}

		return web.Respond(ctx, w, a, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		var au ArticleUp
		if err := web.Decode(w, r, &au); err != nil {
			return weberr.BadRequest(err)
		}

		a, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, a.AuthorID) {
			return weberr.Forbidden(errors.New("only the author can update an article"))
		}

		if au.Title != nil {
			a.Title = *au.Title
		}
		if au.Content != nil {
			a.Content = *au.Content
		}
		a.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, a); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, a, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		a, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, a.AuthorID) {
			return weberr.Forbidden(errors.New("only the author can delete an article"))
		}

		if err := Delete(ctx, db, id); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
