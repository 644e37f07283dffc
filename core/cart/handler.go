package cart

import (
	"context"
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/vmihailov/learnhub/api/web"
	"github.com/vmihailov/learnhub/api/weberr"
	"github.com/vmihailov/learnhub/core/course"
	"github.com/vmihailov/learnhub/validate"
)

type ItemNew struct {
	CourseID string `json:"courseId" validate:"required,uuid4"`
}

func HandleShow(store *Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c, err := store.Load(ctx)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, c.Items(), http.StatusOK)
	}
}

// HandleCreateItem adds a course to the cart. The course must exist;
// adding one that is already there changes nothing.
func HandleCreateItem(db *sqlx.DB, store *Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if _, err := course.Fetch(ctx, db, in.CourseID); err != nil {
			if errors.Is(err, course.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		c, err := store.Load(ctx)
		if err != nil {
			return err
		}

		c.Add(in.CourseID)

		if err := store.Save(ctx, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, c.Items(), http.StatusOK)
	}
}

func HandleDeleteItem(store *Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "course_id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := store.Load(ctx)
		if err != nil {
			return err
		}

		c.Remove(id)

		if err := store.Save(ctx, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, c.Items(), http.StatusOK)
	}
}

func HandleDelete(store *Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		store.Drop(ctx)
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
