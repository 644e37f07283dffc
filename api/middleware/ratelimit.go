package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/vmihailov/learnhub/api/web"
	"github.com/vmihailov/learnhub/api/weberr"
	"github.com/vmihailov/learnhub/rate"
)

// RateLimit rejects requests from clients that exceed the limiter,
// keyed by remote address. Used on credential endpoints.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !lim.Check(host) {
				err := errors.New("client request rate exceeded")
				return weberr.NewError(err, "too many requests", http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
