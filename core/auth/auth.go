package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/vmihailov/learnhub/api/web"
	"github.com/vmihailov/learnhub/api/weberr"
	"github.com/vmihailov/learnhub/core/claims"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// LoadAndSave adapts the session manager's middleware to the web
// Handler signature. It must be the outermost middleware so every
// other layer sees the session-aware context.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error

			sh := session.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			}))
			sh.ServeHTTP(w, r.WithContext(ctx))

			return err
		}
		return h
	}
	return m
}

// Authenticate requires a logged-in session and loads its identity
// into the request context as claims.
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

// Trainer requires a trainer or admin session.
func Trainer(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			uid := session.GetString(ctx, userIDKey)
			if uid == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			role := session.GetString(ctx, roleKey)
			if role != claims.RoleTrainer && role != claims.RoleAdmin {
				return weberr.Forbidden(errors.New("trainer role required"))
			}

			return handler(claims.Set(ctx, claims.Claims{UserID: uid, Role: role}), w, r)
		}
		return h
	}
	return m
}

// Admin requires an admin session.
func Admin(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			uid := session.GetString(ctx, userIDKey)
			if uid == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			role := session.GetString(ctx, roleKey)
			if role != claims.RoleAdmin {
				return weberr.Forbidden(errors.New("admin role required"))
			}

			return handler(claims.Set(ctx, claims.Claims{UserID: uid, Role: role}), w, r)
		}
		return h
	}
	return m
}

func login(ctx context.Context, session *scs.SessionManager, userID, role string) error {
	// Renew to defeat session fixation.
	if err := session.RenewToken(ctx); err != nil {
		return err
	}
	session.Put(ctx, userIDKey, userID)
	session.Put(ctx, roleKey, role)
	return nil
}
