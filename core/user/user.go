package user

import (
	"strings"
	"time"

	"github.com/klasemy/course-store/core/claims"
)

type User struct {
	ID           string    `json:"id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         string    `json:"role" db:"role"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// Wishlist is stored in its own table and loaded on demand.
	Wishlist []int `json:"wishlist,omitempty" db:"-"`
}

type UserSignup struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,gte=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// ResolveRole picks the effective role for an account following a fixed
// precedence: a persisted role wins, then a match against the
// configured administrator email, then the plain user default. It is
// deliberately usable with an empty persisted role so identity can be
// classified even when no profile row exists.
func ResolveRole(persisted string, email string, adminEmail string) string {
	switch {
	case persisted != "":
		return persisted
	case adminEmail != "" && strings.EqualFold(email, adminEmail):
		return claims.RoleAdmin
	default:
		return claims.RoleUser
	}
}
