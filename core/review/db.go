package review

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, rev Review) error {
	const q = `
	INSERT INTO reviews (review_id, course_id, user_id, username, rating, comment, created_at)
	VALUES (:review_id, :course_id, :user_id, :username, :rating, :comment, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, rev); err != nil {
		return err
	}

	return nil
}

func ListByCourse(ctx context.Context, db sqlx.ExtContext, courseID int) ([]Review, error) {
	const q = `SELECT * FROM reviews WHERE course_id = $1 ORDER BY created_at DESC`

	reviews := []Review{}
	if err := sqlx.SelectContext(ctx, db, &reviews, q, courseID); err != nil {
		return nil, err
	}

	return reviews, nil
}

func Summarize(ctx context.Context, db sqlx.ExtContext, courseID int) (Summary, error) {
	reviews, err := ListByCourse(ctx, db, courseID)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		CourseID: courseID,
		Count:    len(reviews),
		Average:  Average(reviews),
	}, nil
}
