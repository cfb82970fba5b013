package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/klasemy/course-store/api/web"
	"github.com/klasemy/course-store/api/weberr"
	"github.com/klasemy/course-store/core/claims"
	"github.com/klasemy/course-store/core/course"
)

func HandleShowCurrent(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		u, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
		}

		u.Wishlist, err = FetchWishlist(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching wishlist of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}

func HandleToggleWishlist(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID, err := strconv.Atoi(web.Param(r, "course_id"))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("course id is not an integer: %w", err))
		}

		ids, err := ToggleWishlist(ctx, db, clm.UserID, courseID)
		if err != nil {
			if errors.Is(err, ErrUnknownCourse) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("toggling course[%d] on wishlist of user[%s]: %w", courseID, clm.UserID, err)
		}

		return web.Respond(ctx, w, ids, http.StatusOK)
	}
}

func HandleShowWishlist(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courses, err := course.ListWishlisted(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching wishlist courses of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, courses, http.StatusOK)
	}
}
