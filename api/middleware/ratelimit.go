package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/klasemy/course-store/api/web"
	"github.com/klasemy/course-store/api/weberr"
	"github.com/klasemy/course-store/rate"
)

// RateLimit throttles a handler per client address. It is meant for the
// endpoints worth brute-forcing: login, signup and checkout.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !lim.Check(host) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, "too many requests", http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
