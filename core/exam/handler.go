package exam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vmihailov/learnhub/api/web"
	"github.com/vmihailov/learnhub/api/weberr"
	"github.com/vmihailov/learnhub/core/certificate"
	"github.com/vmihailov/learnhub/core/claims"
	"github.com/vmihailov/learnhub/core/course"
	"github.com/vmihailov/learnhub/database"
	"github.com/vmihailov/learnhub/dates"
	"github.com/vmihailov/learnhub/filestore"
	"github.com/vmihailov/learnhub/validate"
)

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var en ExamNew
		if err := web.Decode(w, r, &en); err != nil {
			return weberr.BadRequest(err)
		}

		if fields, err := validate.CheckFields(en); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity, weberr.WithFields(fields))
		}

		crs, err := course.Fetch(ctx, db, en.CourseID)
		if err != nil {
			if errors.Is(err, course.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, crs.TrainerID) {
			return weberr.Forbidden(errors.New("only the owning trainer can add exams"))
		}

		start, end, err := dates.ParseWindow(en.StartDate, en.EndDate, time.Local)
		if err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		e := Exam{
			ID:          validate.GenerateID(),
			CourseID:    en.CourseID,
			Name:        en.Name,
			Description: en.Description,
			StartDate:   start,
			EndDate:     end,
			MaxPoints:   en.MaxPoints,
			PassPoints:  en.PassPoints,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, e); err != nil {
			return err
		}

		return web.Respond(ctx, w, e, http.StatusCreated)
	}
}

func HandleListByCourse(db *sqlx.DB, clock dates.Clock) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		exams, err := ListByCourse(ctx, db, courseID)
		if err != nil {
			return err
		}

		views := make([]View, 0, len(exams))
		for _, e := range exams {
			views = append(views, NewView(e, clock))
		}

		return web.Respond(ctx, w, views, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB, clock dates.Clock) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		e, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, NewView(e, clock), http.StatusOK)
	}
}

// HandleSubmit accepts a multipart upload for an exam. The caller
// must own the course and the submission window must be open.
func HandleSubmit(db *sqlx.DB, fs filestore.Store, clock dates.Clock, maxSize int64) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		e, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		owned, err := course.IsOwned(ctx, db, clm.UserID, e.CourseID)
		if err != nil {
			return err
		}
		if !owned {
			return weberr.Forbidden(errors.New("not enrolled in the exam's course"))
		}

		if dates.IsUpcoming(clock, e.StartDate) {
			err := errors.New("the exam has not started yet")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}
		if dates.HasEnded(clock, e.EndDate) {
			err := errors.New("the exam deadline has passed")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		if err := r.ParseMultipartForm(maxSize); err != nil {
			return weberr.BadRequest(fmt.Errorf("parsing upload: %w", err))
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("missing submission file: %w", err))
		}
		defer file.Close()

		path, err := fs.Save(header.Filename, file)
		if err != nil {
			return fmt.Errorf("storing submission: %w", err)
		}

		sub := Submission{
			ID:          validate.GenerateID(),
			ExamID:      e.ID,
			UserID:      clm.UserID,
			FilePath:    path,
			SubmittedAt: time.Now().UTC(),
		}

		if err := UpsertSubmission(ctx, db, sub); err != nil {
			return err
		}

		return web.Respond(ctx, w, sub, http.StatusCreated)
	}
}

func HandleListSubmissions(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		e, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		crs, err := course.Fetch(ctx, db, e.CourseID)
		if err != nil {
			return err
		}

		if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, crs.TrainerID) {
			return weberr.Forbidden(errors.New("only the owning trainer can read submissions"))
		}

		subs, err := ListSubmissions(ctx, db, e.ID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, subs, http.StatusOK)
	}
}

// HandleDownloadSubmission streams the uploaded binary to its owner
// or the course trainer.
func HandleDownloadSubmission(db *sqlx.DB, fs filestore.Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		sub, err := FetchSubmission(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrSubmissionNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !claims.IsUser(ctx, sub.UserID) {
			e, err := Fetch(ctx, db, sub.ExamID)
			if err != nil {
				return err
			}
			crs, err := course.Fetch(ctx, db, e.CourseID)
			if err != nil {
				return err
			}
			if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, crs.TrainerID) {
				return weberr.Forbidden(errors.New("cannot read another student's submission"))
			}
		}

		f, err := fs.Open(sub.FilePath)
		if err != nil {
			return fmt.Errorf("opening submission file: %w", err)
		}
		defer f.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, f); err != nil {
			return fmt.Errorf("streaming submission file: %w", err)
		}
		return nil
	}
}

// HandleGrade records a grade; reaching the pass mark issues the
// student's certificate for the course.
func HandleGrade(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		var gu GradeUp
		if err := web.Decode(w, r, &gu); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(gu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		sub, err := FetchSubmission(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrSubmissionNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		e, err := Fetch(ctx, db, sub.ExamID)
		if err != nil {
			return err
		}

		crs, err := course.Fetch(ctx, db, e.CourseID)
		if err != nil {
			return err
		}

		if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, crs.TrainerID) {
			return weberr.Forbidden(errors.New("only the owning trainer can grade submissions"))
		}

		if gu.Grade > e.MaxPoints {
			err := fmt.Errorf("grade %d exceeds the exam's %d points", gu.Grade, e.MaxPoints)
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := Grade(ctx, tx, sub.ID, gu.Grade); err != nil {
				return err
			}

			if gu.Grade >= e.PassPoints {
				cert := certificate.Certificate{
					ID:       validate.GenerateID(),
					UserID:   sub.UserID,
					CourseID: e.CourseID,
					ExamID:   e.ID,
					Grade:    gu.Grade,
					IssuedOn: time.Now().UTC(),
				}
				if err := certificate.Issue(ctx, tx, cert); err != nil {
					return err
				}
			}

			return nil
		})

		if err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
