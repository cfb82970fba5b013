package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/klasemy/course-store/api/web"
	"github.com/klasemy/course-store/api/weberr"
	"github.com/klasemy/course-store/core/user"
	"github.com/klasemy/course-store/validate"
	"golang.org/x/crypto/bcrypt"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func HandleSignup(db *sqlx.DB, session *scs.SessionManager, adminEmail string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var su user.UserSignup
		if err := web.Decode(w, r, &su); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(su); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now().UTC()
		u := user.User{
			ID:           validate.GenerateID(),
			Name:         su.Name,
			Email:        su.Email,
			Role:         user.ResolveRole("", su.Email, adminEmail),
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, u); err != nil {
			if errors.Is(err, user.ErrEmailTaken) {
				return weberr.NewError(err, "email already registered", http.StatusConflict)
			}
			return fmt.Errorf("creating user[%s]: %w", su.Email, err)
		}

		if err := login(ctx, session, u); err != nil {
			return fmt.Errorf("opening session for user[%s]: %w", u.ID, err)
		}

		return web.Respond(ctx, w, u, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, session *scs.SessionManager, adminEmail string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var creds Credentials
		if err := web.Decode(w, r, &creds); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(creds); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		u, err := user.FetchByEmail(ctx, db, creds.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return invalidCredentials()
			}
			return fmt.Errorf("fetching user[%s]: %w", creds.Email, err)
		}

		if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(creds.Password)); err != nil {
			return invalidCredentials()
		}

		u.Role = user.ResolveRole(u.Role, u.Email, adminEmail)

		if err := login(ctx, session, u); err != nil {
			return fmt.Errorf("opening session for user[%s]: %w", u.ID, err)
		}

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// login renews the session token before binding the identity to it, so
// a pre-login session id never survives authentication.
func login(ctx context.Context, session *scs.SessionManager, u user.User) error {
	if err := session.RenewToken(ctx); err != nil {
		return err
	}

	session.Put(ctx, userIDKey, u.ID)
	session.Put(ctx, roleKey, u.Role)
	return nil
}

func invalidCredentials() error {
	err := errors.New("invalid credentials")
	return weberr.NewError(err, err.Error(), http.StatusUnauthorized)
}
