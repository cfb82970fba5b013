package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/klasemy/course-store/api/web"
	"github.com/klasemy/course-store/api/weberr"
	"github.com/klasemy/course-store/core/claims"
	"github.com/klasemy/course-store/core/user"
	"github.com/klasemy/course-store/validate"
)

// HandleCreate appends a review for the course. Purchase is not checked
// here: the storefront hides the form from non-buyers, and that is the
// only gate.
func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID, err := parseCourseID(r)
		if err != nil {
			return err
		}

		var rn ReviewNew
		if err := web.Decode(w, r, &rn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(rn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		u, err := user.Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
		}

		rev := Review{
			ID:        validate.GenerateID(),
			CourseID:  courseID,
			UserID:    clm.UserID,
			Username:  u.Name,
			Rating:    rn.Rating,
			Comment:   rn.Comment,
			CreatedAt: time.Now().UTC(),
		}

		if err := Create(ctx, db, rev); err != nil {
			return fmt.Errorf("creating review on course[%d] by user[%s]: %w", courseID, clm.UserID, err)
		}

		return web.Respond(ctx, w, rev, http.StatusCreated)
	}
}

func HandleListByCourse(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID, err := parseCourseID(r)
		if err != nil {
			return err
		}

		reviews, err := ListByCourse(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("listing reviews of course[%d]: %w", courseID, err)
		}

		return web.Respond(ctx, w, reviews, http.StatusOK)
	}
}

func HandleShowSummary(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID, err := parseCourseID(r)
		if err != nil {
			return err
		}

		sum, err := Summarize(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("summarizing reviews of course[%d]: %w", courseID, err)
		}

		return web.Respond(ctx, w, sum, http.StatusOK)
	}
}

func parseCourseID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(web.Param(r, "course_id"))
	if err != nil {
		return 0, weberr.BadRequest(fmt.Errorf("course id is not an integer: %w", err))
	}
	return id, nil
}
