package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/klasemy/course-store/api"
	"github.com/klasemy/course-store/api/background"
	"github.com/klasemy/course-store/database"
	"github.com/klasemy/course-store/email"
	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"
)

var dbHost string

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	pool, err := dockertest.NewPool("")
	if err != nil {
		fmt.Printf("connecting to docker: %v\n", err)
		return 1
	}

	res, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=postgres",
	})
	if err != nil {
		fmt.Printf("starting postgres container: %v\n", err)
		return 1
	}
	defer func() {
		if err := pool.Purge(res); err != nil {
			fmt.Printf("purging postgres container: %v\n", err)
		}
	}()

	dbHost = "localhost:" + res.GetPort("5432/tcp")

	err = pool.Retry(func() error {
		db, err := database.Open(dbConfig("postgres"))
		if err != nil {
			return err
		}
		defer db.Close()
		return database.StatusCheck(context.Background(), db)
	})
	if err != nil {
		fmt.Printf("waiting for postgres: %v\n", err)
		return 1
	}

	return m.Run()
}

func dbConfig(name string) database.Config {
	return database.Config{
		User:         "postgres",
		Password:     "postgres",
		Host:         dbHost,
		Name:         name,
		MaxIdleConns: 1,
		MaxOpenConns: 4,
		DisableTLS:   true,
	}
}

type TestEnv struct {
	URL        string
	DB         *sqlx.DB
	Mailer     *email.Mailer
	ReceiptDir string

	AdminEmail string
	AdminPass  string
	UserEmail  string
	UserPass   string
	UserName   string

	server *httptest.Server
	client *http.Client
}

// NewTestEnv starts a full API instance on its own database. The mail
// relay is left unconfigured on purpose, so receipt delivery always
// takes the local-file fallback path.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	admin, err := database.Open(dbConfig("postgres"))
	if err != nil {
		return nil, fmt.Errorf("opening admin connection: %w", err)
	}
	defer admin.Close()

	if _, err := admin.Exec("CREATE DATABASE " + name); err != nil {
		return nil, fmt.Errorf("creating database %s: %w", name, err)
	}

	db, err := database.Open(dbConfig(name))
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", name, err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating %s: %w", name, err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	session := scs.New()
	session.Lifetime = time.Hour

	receiptDir := t.TempDir()
	mailer := email.New("", "", "", "587", receiptDir)

	env := &TestEnv{
		DB:         db,
		Mailer:     mailer,
		ReceiptDir: receiptDir,
		AdminEmail: "admin@coursestore.test",
		AdminPass:  "gophers123",
		UserEmail:  "user@coursestore.test",
		UserPass:   "gophers123",
		UserName:   "Test User",
	}

	mux := api.APIMux(api.APIConfig{
		Log:        logger,
		DB:         db,
		Session:    session,
		Mailer:     mailer,
		Background: background.New(logger),
		AdminEmail: env.AdminEmail,
	})

	env.server = httptest.NewServer(mux)
	env.URL = env.server.URL

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	env.client = &http.Client{Jar: jar}

	t.Cleanup(func() {
		env.server.Close()
		db.Close()
	})

	if err := env.signup("Store Admin", env.AdminEmail, env.AdminPass); err != nil {
		return nil, fmt.Errorf("signing up admin: %w", err)
	}

	if err := env.signup(env.UserName, env.UserEmail, env.UserPass); err != nil {
		return nil, fmt.Errorf("signing up user: %w", err)
	}

	return env, nil
}

func (e *TestEnv) Client() *http.Client { return e.client }

func (e *TestEnv) Login(email string, pass string) error {
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, pass)

	w, err := e.client.Post(e.URL+"/auth/login", "application/json", strings.NewReader(body))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("can't login as %s: status code %s", email, w.Status)
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
		return fmt.Errorf("can't logout: status code %s", w.Status)
	}
	return nil
}

// signup registers an account and immediately drops the session it
// opened so the env starts logged out.
func (e *TestEnv) signup(name string, email string, pass string) error {
	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":%q,"passwordConfirm":%q}`, name, email, pass, pass)

	w, err := e.client.Post(e.URL+"/auth/signup", "application/json", strings.NewReader(body))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		return fmt.Errorf("can't signup as %s: status code %s", email, w.Status)
	}

	return e.Logout()
}

// get decodes a JSON GET response into out and returns the status code.
func (e *TestEnv) get(path string, out any) (int, error) {
	w, err := e.client.Get(e.URL + path)
	if err != nil {
		return 0, err
	}
	defer w.Body.Close()

	if out != nil && w.StatusCode < 300 {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			return w.StatusCode, fmt.Errorf("decoding response of %s: %w", path, err)
		}
	}

	return w.StatusCode, nil
}

// request sends a JSON request and decodes the response into out when
// the call succeeds.
func (e *TestEnv) request(method string, path string, body string, out any) (int, error) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	r, err := http.NewRequest(method, e.URL+path, rd)
	if err != nil {
		return 0, err
	}
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}

	w, err := e.client.Do(r)
	if err != nil {
		return 0, err
	}
	defer w.Body.Close()

	if out != nil && w.StatusCode < 300 {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			return w.StatusCode, fmt.Errorf("decoding response of %s %s: %w", method, path, err)
		}
	}

	return w.StatusCode, nil
}
