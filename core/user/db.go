package user

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/klasemy/course-store/database"
	"github.com/lib/pq"
)

var (
	ErrEmailTaken = errors.New("email already registered")

	// ErrUnknownCourse is returned when a wishlist toggle points at a
	// course that is not in the catalog.
	ErrUnknownCourse = errors.New("course does not exist")
)

const (
	uniqueViolation = pq.ErrorCode("23505")
	fkViolation     = pq.ErrorCode("23503")
)

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users (user_id, name, email, role, password_hash, created_at, updated_at)
	VALUES (:user_id, :name, :email, :role, :password_hash, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, u); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `SELECT * FROM users WHERE user_id = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, id); err != nil {
		return User{}, err
	}

	return u, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, email); err != nil {
		return User{}, err
	}

	return u, nil
}

func FetchWishlist(ctx context.Context, db sqlx.ExtContext, userID string) ([]int, error) {
	const q = `SELECT course_id FROM wishlist_items WHERE user_id = $1 ORDER BY created_at`

	ids := []int{}
	if err := sqlx.SelectContext(ctx, db, &ids, q, userID); err != nil {
		return nil, err
	}

	return ids, nil
}

// ToggleWishlist adds courseID to the user's wishlist when absent and
// removes it when present, returning the resulting wishlist. The write
// and the read-back run in one database transaction so the returned
// state is exactly what was persisted.
func ToggleWishlist(ctx context.Context, db *sqlx.DB, userID string, courseID int) ([]int, error) {
	var ids []int

	err := database.Transaction(db, func(tx sqlx.ExtContext) error {
		const del = `DELETE FROM wishlist_items WHERE user_id = $1 AND course_id = $2`

		res, err := tx.ExecContext(ctx, del, userID, courseID)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if n == 0 {
			const ins = `INSERT INTO wishlist_items (user_id, course_id, created_at) VALUES ($1, $2, $3)`

			if _, err := tx.ExecContext(ctx, ins, userID, courseID, time.Now().UTC()); err != nil {
				var pqErr *pq.Error
				if errors.As(err, &pqErr) && pqErr.Code == fkViolation {
					return ErrUnknownCourse
				}
				return err
			}
		}

		ids, err = FetchWishlist(ctx, tx, userID)
		return err
	})

	if err != nil {
		return nil, err
	}

	return ids, nil
}
