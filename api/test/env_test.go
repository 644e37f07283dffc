package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"golang.org/x/crypto/bcrypt"

	"github.com/vmihailov/learnhub/api"
	"github.com/vmihailov/learnhub/api/background"
	"github.com/vmihailov/learnhub/config"
	"github.com/vmihailov/learnhub/core/claims"
	"github.com/vmihailov/learnhub/core/user"
	"github.com/vmihailov/learnhub/database"
	"github.com/vmihailov/learnhub/dates"
	"github.com/vmihailov/learnhub/filestore"
	"github.com/vmihailov/learnhub/rate"
	"github.com/vmihailov/learnhub/validate"
)

const (
	testWebhookSecret = "whsec_test_secret"
	testPass          = "averysafepass"
)

type TestEnv struct {
	t  *testing.T
	DB *sqlx.DB

	URL string

	UserEmail    string
	UserPass     string
	TrainerEmail string
	TrainerPass  string

	WebhookSecret string

	Paypal *mockPaypal
	Stripe *mockStripe

	Mails *mailRecorder

	client *http.Client
}

// mailRecorder stands in for the smtp mailer and keeps whatever would
// have been sent.
type mailRecorder struct {
	Activations map[string]string
	Recoveries  map[string]string
}

func newMailRecorder() *mailRecorder {
	return &mailRecorder{
		Activations: make(map[string]string),
		Recoveries:  make(map[string]string),
	}
}

func (m *mailRecorder) SendActivationToken(token, to string) error {
	m.Activations[to] = token
	return nil
}

func (m *mailRecorder) SendRecoveryToken(token, to string) error {
	m.Recoveries[to] = token
	return nil
}

// NewTestEnv boots a throwaway postgres container, migrates it, seeds
// a student and a trainer, and serves the full API with mock payment
// providers. Everything is torn down with the test.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("connecting to docker: %w", err)
	}

	res, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=" + name,
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}
	t.Cleanup(func() { _ = pool.Purge(res) })

	cfg := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       "localhost:" + res.GetPort("5432/tcp"),
		Name:       name,
		DisableTLS: true,
	}

	var db *sqlx.DB
	if err := pool.Retry(func() error {
		db, err = database.Open(cfg)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		return nil, fmt.Errorf("waiting for postgres: %w", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating test database: %w", err)
	}

	env := &TestEnv{
		t:             t,
		DB:            db,
		UserEmail:     "student@example.com",
		UserPass:      testPass,
		TrainerEmail:  "trainer@example.com",
		TrainerPass:   testPass,
		WebhookSecret: testWebhookSecret,
		Paypal:        &mockPaypal{},
		Stripe:        &mockStripe{},
		Mails:         newMailRecorder(),
	}

	if err := env.seedUser(env.UserEmail, env.UserPass, claims.RoleUser); err != nil {
		return nil, err
	}
	if err := env.seedUser(env.TrainerEmail, env.TrainerPass, claims.RoleTrainer); err != nil {
		return nil, err
	}

	ppSrv := httptest.NewServer(env.Paypal.handle())
	t.Cleanup(ppSrv.Close)

	strpSrv := httptest.NewServer(env.Stripe.handle())
	t.Cleanup(strpSrv.Close)

	pp, err := paypal.NewClient("test-client", "test-secret", ppSrv.URL)
	if err != nil {
		return nil, fmt.Errorf("building paypal client: %w", err)
	}

	strp := &stripecl.API{}
	strp.Init("sk_test_123", &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL: stripe.String(strpSrv.URL),
		}),
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	session := scs.New()
	session.Lifetime = time.Hour

	files, err := filestore.NewLocal(t.TempDir())
	if err != nil {
		return nil, fmt.Errorf("preparing upload dir: %w", err)
	}

	mux := api.APIMux(api.APIConfig{
		Log:           logger,
		DB:            db,
		Session:       session,
		Clock:         dates.Wall,
		Files:         files,
		UploadMaxSize: 1 << 20,
		Mailer:        env.Mails,
		TokenTimeout:  time.Minute,
		Background:    background.New(logger),
		LoginLimiter:  rate.NewLimiter(1000, 100, 1000),
		Paypal:        pp,
		Stripe:        strp,
		StripeCfg:     config.Stripe{WebhookSecret: testWebhookSecret},
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	env.URL = srv.URL

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("building cookie jar: %w", err)
	}
	env.client = &http.Client{
		Jar: jar,

		// Oauth redirects must not be followed into the void.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return env, nil
}

func (e *TestEnv) Client() *http.Client { return e.client }

func (e *TestEnv) seedUser(mail, pass, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		ID:           validate.GenerateID(),
		Name:         "Test " + role,
		Email:        mail,
		Role:         role,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return user.Create(context.Background(), e.DB, usr)
}

// Login opens a session for the given credentials on the shared
// client; the session cookie lands in the jar.
func (e *TestEnv) Login(mail, pass string) error {
	body, err := json.Marshal(map[string]string{
		"email":    mail,
		"password": pass,
	})
	if err != nil {
		return err
	}

	w, err := e.client.Post(e.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("login of %s failed: status code %s", mail, w.Status)
	}
	return nil
}

func (e *TestEnv) Logout() error {
	w, err := e.client.Post(e.URL+"/auth/logout", "application/json", nil)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout failed: status code %s", w.Status)
	}
	return nil
}
