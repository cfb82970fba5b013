package review

import "time"

// Reviews are append-only: there is no edit or delete path, and nothing
// stops a user from reviewing the same course twice.
type Review struct {
	ID        string    `json:"id" db:"review_id"`
	CourseID  int       `json:"courseId" db:"course_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type ReviewNew struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// Summary is computed from the stored reviews on every request, never
// persisted.
type Summary struct {
	CourseID int     `json:"courseId"`
	Count    int     `json:"count"`
	Average  float64 `json:"average"`
}

// Average is the mean rating of rs, 0 when rs is empty.
func Average(rs []Review) float64 {
	if len(rs) == 0 {
		return 0
	}

	var sum int
	for _, r := range rs {
		sum += r.Rating
	}

	return float64(sum) / float64(len(rs))
}
