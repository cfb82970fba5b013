package course

import "time"

// Course ids are small integers assigned as max(existing)+1, so they
// stay dense until an admin deletes from the middle of the catalog.
type Course struct {
	ID          int       `json:"id" db:"course_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Instructor  string    `json:"instructor" db:"instructor"`
	Price       int       `json:"price" db:"price"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	TrailerURL  string    `json:"trailerUrl" db:"trailer_url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type CourseNew struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Instructor  string `json:"instructor" validate:"required"`
	Price       int    `json:"price" validate:"gte=0"`
	ImageURL    string `json:"imageUrl" validate:"required"`
	TrailerURL  string `json:"trailerUrl" validate:"omitempty,url"`
}

type PriceUp struct {
	Price int `json:"price" validate:"gte=0"`
}
