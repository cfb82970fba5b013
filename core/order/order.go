package order

import (
	"time"

	"github.com/lib/pq"
)

type Status string

const (
	Pending   Status = "pending"
	Confirmed Status = "confirmed"
)

// Order is the persisted record of a checkout attempt. The payment
// reference is supplied by the customer (a bank or UPI reference) and
// its uniqueness is the only proof-of-payment control. Purchased
// courses are stored by name, not id: the record is a denormalized
// snapshot of what was bought.
type Order struct {
	ID        string         `json:"id" db:"order_id"`
	UserID    *string        `json:"userId" db:"user_id"`
	Customer  string         `json:"customer" db:"customer"`
	Email     string         `json:"email" db:"email"`
	Reference string         `json:"reference" db:"reference"`
	Courses   pq.StringArray `json:"courses" db:"courses"`
	Amount    int            `json:"amount" db:"amount"`
	Status    Status         `json:"status" db:"status"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

type OrderNew struct {
	Customer  string   `json:"customer" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Reference string   `json:"reference" validate:"required"`
	Courses   []string `json:"courses" validate:"required,min=1,dive,required"`
	Amount    int      `json:"amount" validate:"gte=0"`
}

type StatusUp struct {
	ID        string    `db:"order_id"`
	Status    Status    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}
