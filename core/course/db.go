package course

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/klasemy/course-store/database"
)

func Fetch(ctx context.Context, db sqlx.ExtContext, id int) (Course, error) {
	const q = `SELECT * FROM courses WHERE course_id = $1`

	var c Course
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		return Course{}, err
	}

	return c, nil
}

func List(ctx context.Context, db sqlx.ExtContext) ([]Course, error) {
	const q = `SELECT * FROM courses ORDER BY course_id`

	courses := []Course{}
	if err := sqlx.SelectContext(ctx, db, &courses, q); err != nil {
		return nil, err
	}

	return courses, nil
}

// ListOwned returns the courses the user has paid for. Ownership is
// derived from the names stored on confirmed orders, joined against the
// current catalog: a course renamed after purchase no longer matches.
func ListOwned(ctx context.Context, db sqlx.ExtContext, userID string) ([]Course, error) {
	const q = `
	SELECT * FROM courses WHERE name IN (
		SELECT UNNEST(courses) FROM orders WHERE user_id = $1 AND status = 'confirmed'
	)
	ORDER BY course_id`

	courses := []Course{}
	if err := sqlx.SelectContext(ctx, db, &courses, q, userID); err != nil {
		return nil, err
	}

	return courses, nil
}

func ListWishlisted(ctx context.Context, db sqlx.ExtContext, userID string) ([]Course, error) {
	const q = `
	SELECT c.* FROM courses AS c
	JOIN wishlist_items AS w ON w.course_id = c.course_id
	WHERE w.user_id = $1
	ORDER BY w.created_at`

	courses := []Course{}
	if err := sqlx.SelectContext(ctx, db, &courses, q, userID); err != nil {
		return nil, err
	}

	return courses, nil
}

// Create assigns the next free id and inserts the course in one
// database transaction, so concurrent creations cannot be handed the
// same id.
func Create(ctx context.Context, db *sqlx.DB, cn CourseNew) (Course, error) {
	var crs Course

	err := database.Transaction(db, func(tx sqlx.ExtContext) error {
		id, err := nextID(ctx, tx)
		if err != nil {
			return fmt.Errorf("assigning course id: %w", err)
		}

		crs = build(id, cn, time.Now().UTC())
		return insert(ctx, tx, crs)
	})

	if err != nil {
		return Course{}, err
	}

	return crs, nil
}

// CreateBulk inserts the whole batch with consecutive ids starting at
// max(existing)+1. The batch is atomic: either every course lands or
// none does.
func CreateBulk(ctx context.Context, db *sqlx.DB, batch []CourseNew) ([]Course, error) {
	courses := make([]Course, 0, len(batch))

	err := database.Transaction(db, func(tx sqlx.ExtContext) error {
		id, err := nextID(ctx, tx)
		if err != nil {
			return fmt.Errorf("assigning course ids: %w", err)
		}

		now := time.Now().UTC()
		for i, cn := range batch {
			crs := build(id+i, cn, now)
			if err := insert(ctx, tx, crs); err != nil {
				return fmt.Errorf("inserting course[%s]: %w", cn.Name, err)
			}
			courses = append(courses, crs)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return courses, nil
}

func UpdatePrice(ctx context.Context, db sqlx.ExtContext, id int, price int) (updated bool, err error) {
	const q = `UPDATE courses SET price = $2, updated_at = $3 WHERE course_id = $1`

	res, err := db.ExecContext(ctx, q, id, price, time.Now().UTC())
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// Delete hard-deletes a course. Historical orders keep referring to the
// deleted name; they are intentionally left untouched.
func Delete(ctx context.Context, db sqlx.ExtContext, id int) (deleted bool, err error) {
	const q = `DELETE FROM courses WHERE course_id = $1`

	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// ResetToSeed replaces the whole catalog with the fixed seed set,
// assigning ids 1..N. Running it repeatedly yields the same catalog.
func ResetToSeed(ctx context.Context, db *sqlx.DB) ([]Course, error) {
	courses := make([]Course, 0, len(seed))

	err := database.Transaction(db, func(tx sqlx.ExtContext) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM courses`); err != nil {
			return fmt.Errorf("clearing catalog: %w", err)
		}

		now := time.Now().UTC()
		for i, cn := range seed {
			crs := build(i+1, cn, now)
			if err := insert(ctx, tx, crs); err != nil {
				return fmt.Errorf("inserting seed course[%s]: %w", cn.Name, err)
			}
			courses = append(courses, crs)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return courses, nil
}

func nextID(ctx context.Context, db sqlx.ExtContext) (int, error) {
	const q = `SELECT COALESCE(MAX(course_id), 0) + 1 FROM courses`

	var id int
	if err := sqlx.GetContext(ctx, db, &id, q); err != nil {
		return 0, err
	}

	return id, nil
}

func build(id int, cn CourseNew, now time.Time) Course {
	return Course{
		ID:          id,
		Name:        cn.Name,
		Description: cn.Description,
		Instructor:  cn.Instructor,
		Price:       cn.Price,
		ImageURL:    cn.ImageURL,
		TrailerURL:  cn.TrailerURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func insert(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses (course_id, name, description, instructor, price, image_url, trailer_url, created_at, updated_at)
	VALUES (:course_id, :name, :description, :instructor, :price, :image_url, :trailer_url, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return err
	}

	return nil
}
