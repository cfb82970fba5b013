package order

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrDuplicateReference means the payment reference is already bound to
// another order. It is detected through the unique constraint on the
// reference column, so two racing checkouts cannot both get past it.
var ErrDuplicateReference = errors.New("payment reference already used")

const uniqueViolation = pq.ErrorCode("23505")

func Create(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	const q = `
	INSERT INTO orders (order_id, user_id, customer, email, reference, courses, amount, status, created_at, updated_at)
	VALUES (:order_id, :user_id, :customer, :email, :reference, :courses, :amount, :status, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ord); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == "orders_reference_key" {
			return ErrDuplicateReference
		}
		return err
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Order, error) {
	const q = `SELECT * FROM orders WHERE order_id = $1`

	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, id); err != nil {
		return Order{}, err
	}

	return ord, nil
}

func List(ctx context.Context, db sqlx.ExtContext) ([]Order, error) {
	const q = `SELECT * FROM orders ORDER BY created_at DESC`

	orders := []Order{}
	if err := sqlx.SelectContext(ctx, db, &orders, q); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatus unconditionally moves the order to the given status.
// Re-confirming a confirmed order is a no-op in effect, which makes the
// admin confirmation action idempotent.
func UpdateStatus(ctx context.Context, db sqlx.ExtContext, up StatusUp) (updated bool, err error) {
	const q = `UPDATE orders SET status = :status, updated_at = :updated_at WHERE order_id = :order_id`

	res, err := sqlx.NamedExecContext(ctx, db, q, up)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// HasPurchased reports whether the user has a confirmed order whose
// course list contains courseName. The match is by exact name, the same
// rule course.ListOwned uses.
func HasPurchased(ctx context.Context, db sqlx.ExtContext, userID string, courseName string) (bool, error) {
	const q = `
	SELECT EXISTS (
		SELECT 1 FROM orders WHERE user_id = $1 AND status = 'confirmed' AND $2 = ANY(courses)
	)`

	var purchased bool
	if err := sqlx.GetContext(ctx, db, &purchased, q, userID, courseName); err != nil {
		return false, err
	}

	return purchased, nil
}
