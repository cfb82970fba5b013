package course

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
	"github.com/klasemy/course-store/core/order"
	"github.com/klasemy/course-store/validate"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courses, err := List(ctx, db)
		if err != nil {
			return fmt.Errorf("listing courses: %w", err)
		}

		return web.Respond(ctx, w, courses, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := parseID(r, "id")
		if err != nil {
			return err
		}

		crs, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%d]: %w", id, err)
		}

		return web.Respond(ctx, w, crs, http.StatusOK)
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
			return fmt.Errorf("listing courses owned by user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, courses, http.StatusOK)
	}
}

// HandleShowPurchased tells the caller whether they own the given
// course, for the storefront to gate things like the review form. The
// order service itself never enforces that gate.
func HandleShowPurchased(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id, err := parseID(r, "course_id")
		if err != nil {
			return err
		}

		crs, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%d]: %w", id, err)
		}

		purchased, err := order.HasPurchased(ctx, db, clm.UserID, crs.Name)
		if err != nil {
			return fmt.Errorf("checking purchase of course[%d] by user[%s]: %w", id, clm.UserID, err)
		}

		res := struct {
			Purchased bool `json:"purchased"`
		}{purchased}

		return web.Respond(ctx, w, res, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cn CourseNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		crs, err := Create(ctx, db, cn)
		if err != nil {
			return fmt.Errorf("creating course[%s]: %w", cn.Name, err)
		}

		return web.Respond(ctx, w, crs, http.StatusCreated)
	}
}

func HandleCreateBulk(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var batch []CourseNew
		if err := web.Decode(w, r, &batch); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if len(batch) == 0 {
			err := errors.New("no courses to create")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		for _, cn := range batch {
			if err := validate.Check(cn); err != nil {
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}
		}

		courses, err := CreateBulk(ctx, db, batch)
		if err != nil {
			return fmt.Errorf("creating %d courses: %w", len(batch), err)
		}

		return web.Respond(ctx, w, courses, http.StatusCreated)
	}
}

func HandleUpdatePrice(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := parseID(r, "id")
		if err != nil {
			return err
		}

		var up PriceUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		updated, err := UpdatePrice(ctx, db, id, up.Price)
		if err != nil {
			return fmt.Errorf("updating price of course[%d]: %w", id, err)
		}

		if !updated {
			return weberr.NotFound(fmt.Errorf("course[%d] does not exist", id))
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := parseID(r, "id")
		if err != nil {
			return err
		}

		deleted, err := Delete(ctx, db, id)
		if err != nil {
			return fmt.Errorf("deleting course[%d]: %w", id, err)
		}

		if !deleted {
			return weberr.NotFound(fmt.Errorf("course[%d] does not exist", id))
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleReset(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courses, err := ResetToSeed(ctx, db)
		if err != nil {
			return fmt.Errorf("resetting catalog to seed: %w", err)
		}

		return web.Respond(ctx, w, courses, http.StatusOK)
	}
}

func parseID(r *http.Request, key string) (int, error) {
	id, err := strconv.Atoi(web.Param(r, key))
	if err != nil {
		return 0, weberr.BadRequest(fmt.Errorf("course id is not an integer: %w", err))
	}
	return id, nil
}
