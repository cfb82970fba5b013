package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jmoiron/sqlx"
	"github.com/klasemy/course-store/api/web"
	"github.com/klasemy/course-store/api/weberr"
	"github.com/klasemy/course-store/core/user"
	"github.com/klasemy/course-store/random"
	"github.com/klasemy/course-store/validate"
	"golang.org/x/oauth2"
)

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

type Provider struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// MakeProviders runs OIDC discovery for each configured provider. It is
// called once at startup; a provider that fails discovery fails the
// whole server rather than silently disabling oauth login.
func MakeProviders(ctx context.Context, cfgs []ProviderConfig) (map[string]Provider, error) {
	providers := make(map[string]Provider, len(cfgs))

	for _, cfg := range cfgs {
		prov, err := oidc.NewProvider(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider[%s]: %w", cfg.Name, err)
		}

		providers[cfg.Name] = Provider{
			oauth: oauth2.Config{
				ClientID:     cfg.Client,
				ClientSecret: cfg.Secret,
				Endpoint:     prov.Endpoint(),
				RedirectURL:  cfg.RedirectURL,
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
			verifier: prov.Verifier(&oidc.Config{ClientID: cfg.Client}),
		}
	}

	return providers, nil
}

func HandleOauthLogin(session *scs.SessionManager, providers map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := providers[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(errors.New("unknown oauth provider"))
		}

		state, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating oauth state: %w", err)
		}

		session.Put(ctx, stateKey, state)

		http.Redirect(w, r, prov.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
		return nil
	}
}

func HandleOauthCallback(db *sqlx.DB, session *scs.SessionManager, providers map[string]Provider, redirectURL string, adminEmail string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := providers[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(errors.New("unknown oauth provider"))
		}

		state := session.PopString(ctx, stateKey)
		if state == "" || state != r.URL.Query().Get("state") {
			return weberr.BadRequest(errors.New("oauth state mismatch"))
		}

		token, err := prov.oauth.Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("exchanging oauth code: %w", err))
		}

		rawIDToken, ok := token.Extra("id_token").(string)
		if !ok {
			return weberr.BadRequest(errors.New("token response carries no id_token"))
		}

		idToken, err := prov.verifier.Verify(ctx, rawIDToken)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("verifying id token: %w", err))
		}

		var identity struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := idToken.Claims(&identity); err != nil {
			return fmt.Errorf("decoding id token claims: %w", err)
		}

		u, err := fetchOrCreate(ctx, db, identity.Email, identity.Name, adminEmail)
		if err != nil {
			return fmt.Errorf("resolving oauth user[%s]: %w", identity.Email, err)
		}

		if err := login(ctx, session, u); err != nil {
			return fmt.Errorf("opening session for user[%s]: %w", u.ID, err)
		}

		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
		return nil
	}
}

// fetchOrCreate maps a provider identity to a local profile, creating
// one on first login. Oauth profiles get an empty password hash, which
// no credential login can ever match.
func fetchOrCreate(ctx context.Context, db *sqlx.DB, email string, name string, adminEmail string) (user.User, error) {
	u, err := user.FetchByEmail(ctx, db, email)
	if err == nil {
		u.Role = user.ResolveRole(u.Role, u.Email, adminEmail)
		return u, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return user.User{}, err
	}

	if name == "" {
		name = email
	}

	now := time.Now().UTC()
	u = user.User{
		ID:           validate.GenerateID(),
		Name:         name,
		Email:        email,
		Role:         user.ResolveRole("", email, adminEmail),
		PasswordHash: []byte{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Create(ctx, db, u); err != nil {
		return user.User{}, err
	}

	return u, nil
}
