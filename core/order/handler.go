package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/klasemy/course-store/api/background"
	"github.com/klasemy/course-store/api/web"
	"github.com/klasemy/course-store/api/weberr"
	"github.com/klasemy/course-store/core/claims"
	"github.com/klasemy/course-store/email"
	"github.com/klasemy/course-store/validate"
)

// HandleCreate is the checkout endpoint. Guests are allowed: when the
// session carries no user the order is simply not attributed to one.
// Orders are created directly in the confirmed state; the pending state
// only exists for records an admin later needs to confirm by hand.
func HandleCreate(db *sqlx.DB, mailer *email.Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var draft OrderNew
		if err := web.Decode(w, r, &draft); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(draft); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var userID *string
		if clm, err := claims.Get(ctx); err == nil {
			uid := clm.UserID
			userID = &uid
		}

		now := time.Now().UTC()
		ord := Order{
			ID:        validate.GenerateID(),
			UserID:    userID,
			Customer:  draft.Customer,
			Email:     draft.Email,
			Reference: draft.Reference,
			Courses:   draft.Courses,
			Amount:    draft.Amount,
			Status:    Confirmed,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, db, ord); err != nil {
			if errors.Is(err, ErrDuplicateReference) {
				return weberr.NewError(err, "payment reference already used", http.StatusConflict)
			}
			return fmt.Errorf("creating order with reference[%s]: %w", ord.Reference, err)
		}

		// Receipt delivery must never fail the committed order, so it
		// runs in the background after the write.
		bg.Add(func() error {
			if _, err := mailer.SendReceipt(receiptData(ord)); err != nil {
				return fmt.Errorf("receipt for order[%s]: %w", ord.ID, err)
			}
			return nil
		})

		return web.Respond(ctx, w, ord, http.StatusCreated)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		orders, err := List(ctx, db)
		if err != nil {
			return fmt.Errorf("listing orders: %w", err)
		}

		return web.Respond(ctx, w, orders, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ord, err := fetchVisible(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

func HandleConfirm(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		up := StatusUp{
			ID:        id,
			Status:    Confirmed,
			UpdatedAt: time.Now().UTC(),
		}

		updated, err := UpdateStatus(ctx, db, up)
		if err != nil {
			return fmt.Errorf("confirming order[%s]: %w", id, err)
		}

		if !updated {
			return weberr.NotFound(fmt.Errorf("order[%s] does not exist", id))
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// HandleShowReceipt serves the plain-text receipt as a download, the
// in-browser fallback for customers whose receipt email never arrived.
func HandleShowReceipt(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ord, err := fetchVisible(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ord.Reference+".txt"))
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(email.Render(receiptData(ord)))); err != nil {
			return fmt.Errorf("writing receipt of order[%s]: %w", ord.ID, err)
		}

		return nil
	}
}

// fetchVisible loads an order and enforces that only its owner or an
// admin may see it. Guest orders have no owner and are admin-only.
func fetchVisible(ctx context.Context, db *sqlx.DB, id string) (Order, error) {
	if err := validate.CheckID(id); err != nil {
		return Order{}, weberr.BadRequest(err)
	}

	ord, err := Fetch(ctx, db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, weberr.NotFound(err)
		}
		return Order{}, fmt.Errorf("fetching order[%s]: %w", id, err)
	}

	if claims.IsAdmin(ctx) {
		return ord, nil
	}

	if ord.UserID == nil || !claims.IsUser(ctx, *ord.UserID) {
		return Order{}, weberr.Forbidden(errors.New("order belongs to another user"))
	}

	return ord, nil
}

func receiptData(ord Order) email.ReceiptData {
	return email.ReceiptData{
		Reference: ord.Reference,
		Customer:  ord.Customer,
		Email:     ord.Email,
		Courses:   ord.Courses,
		Amount:    ord.Amount,
		Status:    string(ord.Status),
		CreatedAt: ord.CreatedAt,
	}
}
