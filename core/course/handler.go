package course

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vmihailov/learnhub/api/web"
	"github.com/vmihailov/learnhub/api/weberr"
	"github.com/vmihailov/learnhub/core/claims"
	"github.com/vmihailov/learnhub/dates"
	"github.com/vmihailov/learnhub/paging"
	"github.com/vmihailov/learnhub/validate"
)

func HandleList(db *sqlx.DB, clock dates.Clock) web.Handler {
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

		courses, err := List(ctx, db, term, page.Size, page.Offset())
		if err != nil {
			return err
		}

		items := make([]View, 0, len(courses))
		for _, c := range courses {
			items = append(items, NewView(c, clock))
		}

		listing := Listing{
			Items:        items,
			Page:         page,
			PreviousPage: page.Previous(),
			NextPage:     page.Next(),
		}

		return web.Respond(ctx, w, listing, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB, clock dates.Clock) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, NewView(c, clock), http.StatusOK)
	}
}

func HandleListOwned(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courses, err := ListOwned(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, courses, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var cn CourseNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(err)
		}

		if fields, err := validate.CheckFields(cn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity, weberr.WithFields(fields))
		}

		start, end, err := dates.ParseWindow(cn.StartDate, cn.EndDate, time.Local)
		if err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		c := Course{
			ID:          validate.GenerateID(),
			Name:        cn.Name,
			Description: cn.Description,
			ImageURL:    cn.ImageURL,
			Price:       cn.Price,
			TrainerID:   clm.UserID,
			StartDate:   start,
			EndDate:     end,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		var cu CourseUp
		if err := web.Decode(w, r, &cu); err != nil {
			return weberr.BadRequest(err)
		}

		if fields, err := validate.CheckFields(cu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity, weberr.WithFields(fields))
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, c.TrainerID) {
			return weberr.Forbidden(errors.New("only the owning trainer can update a course"))
		}

		if cu.Name != nil {
			c.Name = *cu.Name
		}
		if cu.Description != nil {
			c.Description = *cu.Description
		}
		if cu.ImageURL != nil {
			c.ImageURL = *cu.ImageURL
		}
		if cu.Price != nil {
			c.Price = *cu.Price
		}

		if cu.StartDate != nil || cu.EndDate != nil {
			sd := c.StartDate.In(time.Local).Format("2006-01-02")
			ed := c.EndDate.In(time.Local).Format("2006-01-02")
			if cu.StartDate != nil {
				sd = *cu.StartDate
			}
			if cu.EndDate != nil {
				ed = *cu.EndDate
			}

			start, end, err := dates.ParseWindow(sd, ed, time.Local)
			if err != nil {
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}
			c.StartDate, c.EndDate = start, end
		}

		c.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, c); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}
