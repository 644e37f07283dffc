package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"

	"github.com/vmihailov/learnhub/api/background"
	"github.com/vmihailov/learnhub/api/middleware"
	"github.com/vmihailov/learnhub/api/web"
	"github.com/vmihailov/learnhub/config"
	"github.com/vmihailov/learnhub/core/auth"
	"github.com/vmihailov/learnhub/core/blog"
	"github.com/vmihailov/learnhub/core/cart"
	"github.com/vmihailov/learnhub/core/certificate"
	"github.com/vmihailov/learnhub/core/course"
	"github.com/vmihailov/learnhub/core/exam"
	"github.com/vmihailov/learnhub/core/order"
	"github.com/vmihailov/learnhub/core/token"
	"github.com/vmihailov/learnhub/core/user"
	"github.com/vmihailov/learnhub/dates"
	"github.com/vmihailov/learnhub/filestore"
	"github.com/vmihailov/learnhub/rate"
)

type APIConfig struct {
	CorsOrigin         string
	Log                logrus.FieldLogger
	DB                 *sqlx.DB
	Session            *scs.SessionManager
	Clock              dates.Clock
	Files              filestore.Store
	UploadMaxSize      int64
	Mailer             token.Mailer
	TokenTimeout       time.Duration
	Background         *background.Background
	LoginLimiter       *rate.Limiter
	Paypal             *paypal.Client
	Stripe             *stripecl.API
	StripeCfg          config.Stripe
	Providers          map[string]auth.Provider
	LoginRedirectURL   string
	ActivationRequired bool
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
	trainer := auth.Trainer(cfg.Session)
	admin := auth.Admin(cfg.Session)
	limited := middleware.RateLimit(cfg.LoginLimiter)

	carts := cart.NewStore(cfg.Session)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session, cfg.ActivationRequired), limited)
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session), limited)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.LoginRedirectURL))

	a.Handle(http.MethodPost, "/tokens", token.HandleToken(cfg.DB, cfg.Mailer, cfg.TokenTimeout, cfg.Background), limited)
	a.Handle(http.MethodPost, "/tokens/activate", token.HandleActivation(cfg.DB))
	a.Handle(http.MethodPost, "/tokens/recover", token.HandleRecovery(cfg.DB))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodGet, "/users/{id}", user.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPost, "/users", user.HandleCreate(cfg.DB), admin)

	a.Handle(http.MethodGet, "/courses/owned", course.HandleListOwned(cfg.DB), authen)
	a.Handle(http.MethodGet, "/courses/{course_id}/exams", exam.HandleListByCourse(cfg.DB, cfg.Clock))
	a.Handle(http.MethodGet, "/courses/{id}", course.HandleShow(cfg.DB, cfg.Clock))
	a.Handle(http.MethodGet, "/courses", course.HandleList(cfg.DB, cfg.Clock))
	a.Handle(http.MethodPost, "/courses", course.HandleCreate(cfg.DB), trainer)
	a.Handle(http.MethodPut, "/courses/{id}", course.HandleUpdate(cfg.DB), trainer)

	a.Handle(http.MethodGet, "/exams/{id}/submissions", exam.HandleListSubmissions(cfg.DB), trainer)
	a.Handle(http.MethodPost, "/exams/{id}/submissions", exam.HandleSubmit(cfg.DB, cfg.Files, cfg.Clock, cfg.UploadMaxSize), authen)
	a.Handle(http.MethodGet, "/exams/{id}", exam.HandleShow(cfg.DB, cfg.Clock))
	a.Handle(http.MethodPost, "/exams", exam.HandleCreate(cfg.DB), trainer)

	a.Handle(http.MethodGet, "/submissions/{id}/file", exam.HandleDownloadSubmission(cfg.DB, cfg.Files), authen)
	a.Handle(http.MethodPut, "/submissions/{id}/grade", exam.HandleGrade(cfg.DB), trainer)

	a.Handle(http.MethodGet, "/certificates/owned", certificate.HandleListOwned(cfg.DB), authen)
	a.Handle(http.MethodGet, "/certificates/{id}", certificate.HandleShow(cfg.DB))

	a.Handle(http.MethodGet, "/blog/{id}", blog.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/blog", blog.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/blog", blog.HandleCreate(cfg.DB), trainer)
	a.Handle(http.MethodPut, "/blog/{id}", blog.HandleUpdate(cfg.DB), trainer)
	a.Handle(http.MethodDelete, "/blog/{id}", blog.HandleDelete(cfg.DB), trainer)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(carts), authen)
	a.Handle(http.MethodDelete, "/cart", cart.HandleDelete(carts), authen)
	a.Handle(http.MethodPut, "/cart/items", cart.HandleCreateItem(cfg.DB, carts), authen)
	a.Handle(http.MethodDelete, "/cart/items/{course_id}", cart.HandleDeleteItem(carts), authen)

	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.DB), authen)
	a.Handle(http.MethodPost, "/orders/paypal", order.HandlePaypalCheckout(cfg.DB, carts, cfg.Paypal), authen)
	a.Handle(http.MethodPost, "/orders/paypal/{id}/capture", order.HandlePaypalCapture(cfg.DB, carts, cfg.Paypal), authen)
	a.Handle(http.MethodPost, "/orders/stripe", order.HandleStripeCheckout(cfg.DB, carts, cfg.Stripe, cfg.StripeCfg), authen)
	a.Handle(http.MethodPost, "/orders/stripe/capture", order.HandleStripeCapture(cfg.DB, cfg.StripeCfg))

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
