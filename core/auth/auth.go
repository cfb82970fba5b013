// Package auth owns everything about who the caller is: credential
// signup/login, oauth login, and the session-backed middleware that
// turns a session into request claims.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/klasemy/course-store/api/web"
	"github.com/klasemy/course-store/api/weberr"
	"github.com/klasemy/course-store/core/claims"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
	stateKey  = "oauth_state"
)

// LoadAndSave adapts the scs session middleware to the web.Handler
// signature. It must be the outermost middleware: everything else
// assumes session data is available on the context.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error

			sh := session.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			}))
			sh.ServeHTTP(w, r)

			return err
		}
		return h
	}
	return m
}

// Identify attaches claims to the context when the session carries a
// logged-in user and silently does nothing otherwise. It is used on
// routes that serve guests too, like checkout.
func Identify(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if uid := session.GetString(ctx, userIDKey); uid != "" {
				clm := claims.Claims{
					UserID: uid,
					Role:   session.GetString(ctx, roleKey),
				}
				ctx = claims.Set(ctx, clm)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Authenticate rejects requests whose session does not carry a
// logged-in user.
func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			uid := session.GetString(ctx, userIDKey)
			if uid == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			clm := claims.Claims{
				UserID: uid,
				Role:   session.GetString(ctx, roleKey),
			}

			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}

// Admin builds on Authenticate and additionally requires the admin
// role.
func Admin(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !claims.IsAdmin(ctx) {
				return weberr.Forbidden(errors.New("user is not an admin"))
			}

			return handler(ctx, w, r)
		}
		return web.WrapMiddleware([]web.Middleware{Authenticate(session)}, h)
	}
	return m
}
