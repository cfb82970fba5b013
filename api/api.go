package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/klasemy/course-store/api/background"
	"github.com/klasemy/course-store/api/middleware"
	"github.com/klasemy/course-store/api/web"
	"github.com/klasemy/course-store/core/auth"
	"github.com/klasemy/course-store/core/course"
	"github.com/klasemy/course-store/core/order"
	"github.com/klasemy/course-store/core/review"
	"github.com/klasemy/course-store/core/user"
	"github.com/klasemy/course-store/database"
	"github.com/klasemy/course-store/email"
	"github.com/klasemy/course-store/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	Session          *scs.SessionManager
	Mailer           *email.Mailer
	Background       *background.Background
	AdminEmail       string
	Providers        map[string]auth.Provider
	LoginRedirectURL string
	Limiter          *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)
	identify := auth.Identify(cfg.Session)

	var limited web.Middleware
	if cfg.Limiter != nil {
		limited = middleware.RateLimit(cfg.Limiter)
	}

	a.Handle(http.MethodGet, "/health", handleHealth(cfg.DB))

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session, cfg.AdminEmail), limited)
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session, cfg.AdminEmail), limited)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.LoginRedirectURL, cfg.AdminEmail))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodGet, "/users/current/wishlist", user.HandleShowWishlist(cfg.DB), authen)
	a.Handle(http.MethodPut, "/users/current/wishlist/{course_id}", user.HandleToggleWishlist(cfg.DB), authen)

	a.Handle(http.MethodGet, "/courses/owned", course.HandleListOwned(cfg.DB), authen)
	a.Handle(http.MethodGet, "/courses/{course_id}/purchased", course.HandleShowPurchased(cfg.DB), authen)
	a.Handle(http.MethodGet, "/courses/{course_id}/reviews", review.HandleListByCourse(cfg.DB))
	a.Handle(http.MethodGet, "/courses/{course_id}/reviews/summary", review.HandleShowSummary(cfg.DB))
	a.Handle(http.MethodPost, "/courses/{course_id}/reviews", review.HandleCreate(cfg.DB), authen)
	a.Handle(http.MethodGet, "/courses/{id}", course.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/courses", course.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/courses/bulk", course.HandleCreateBulk(cfg.DB), admin)
	a.Handle(http.MethodPost, "/courses/reset", course.HandleReset(cfg.DB), admin)
	a.Handle(http.MethodPost, "/courses", course.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/courses/{id}/price", course.HandleUpdatePrice(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/courses/{id}", course.HandleDelete(cfg.DB), admin)

	a.Handle(http.MethodPost, "/orders", order.HandleCreate(cfg.DB, cfg.Mailer, cfg.Background), identify, limited)
	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.DB), admin)
	a.Handle(http.MethodPost, "/orders/{id}/confirm", order.HandleConfirm(cfg.DB), admin)
	a.Handle(http.MethodGet, "/orders/{id}/receipt", order.HandleShowReceipt(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders/{id}", order.HandleShow(cfg.DB), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}

func handleHealth(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		status := "ok"
		code := http.StatusOK

		if err := database.StatusCheck(ctx, db); err != nil {
			status = fmt.Sprintf("db unreachable: %v", err)
			code = http.StatusInternalServerError
		}

		res := struct {
			Status string `json:"status"`
		}{status}

		return web.Respond(ctx, w, res, code)
	}
}
