package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nonact/models"
	"nonact/store"
	"nonact/utils"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/oauth2"
)

var ErrUnknownProvider = errors.New("unknown or unconfigured OAuth provider")

const oauthStateTTL = 10 * time.Minute

// oauthEndpoints describes every provider the platform can sign in with.
// The entry is only usable when client credentials for it are configured.
// Package-level so tests can point a provider at a local server.
var oauthEndpoints = map[string]struct {
	endpoint    oauth2.Endpoint
	scopes      []string
	userInfoURL string
}{
	"google": {
		endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		scopes:      []string{"openid", "email"},
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	},
	"twitter": {
		endpoint: oauth2.Endpoint{
			AuthURL:  "https://twitter.com/i/oauth2/authorize",
			TokenURL: "https://api.twitter.com/2/oauth2/token",
		},
		scopes:      []string{"users.read", "tweet.read"},
		userInfoURL: "https://api.twitter.com/2/users/me",
	},
	"facebook": {
		endpoint: oauth2.Endpoint{
			AuthURL:  "https://www.facebook.com/v18.0/dialog/oauth",
			TokenURL: "https://graph.facebook.com/v18.0/oauth/access_token",
		},
		scopes:      []string{"email"},
		userInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
	},
}

func (p *Provider) oauthConfig(name string) (*oauth2.Config, string, error) {
	ep, ok := oauthEndpoints[name]
	creds, haveCreds := p.Cfg.OAuth[name]
	if !ok || !haveCreds || creds.ClientID == "" {
		return nil, "", ErrUnknownProvider
	}
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     ep.endpoint,
		Scopes:       ep.scopes,
		RedirectURL:  strings.TrimRight(p.Cfg.AppURL, "/") + "/api/auth/callback",
	}, ep.userInfoURL, nil
}

// SignInWithOAuth returns the provider's authorization URL carrying state.
// The caller redirects the browser there; the provider sends the user back
// to the callback with a code.
func (p *Provider) SignInWithOAuth(providerName, state string) (string, error) {
	conf, _, err := p.oauthConfig(providerName)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state), nil
}

// ExchangeCodeForSession completes the code flow: swap the code for a
// provider token, fetch the provider identity, find or create the matching
// account, and issue a session token for it.
func (p *Provider) ExchangeCodeForSession(ctx context.Context, providerName, code string) (string, *models.User, error) {
	conf, userInfoURL, err := p.oauthConfig(providerName)
	if err != nil {
		return "", nil, err
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("exchange code: %w", err)
	}

	email, err := fetchEmail(ctx, conf, tok, userInfoURL)
	if err != nil {
		return "", nil, err
	}

	user, err := p.findOrCreateOAuthUser(ctx, providerName, email)
	if err != nil {
		return "", nil, err
	}

	tokenString, err := p.issueSession(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return tokenString, user, nil
}

func fetchEmail(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token, userInfoURL string) (string, error) {
	resp, err := conf.Client(ctx, tok).Get(userInfoURL)
	if err != nil {
		return "", fmt.Errorf("fetch identity: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch identity: status %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decode identity: %w", err)
	}
	if info.Email == "" {
		return "", errors.New("provider returned no email address")
	}
	return strings.ToLower(strings.TrimSpace(info.Email)), nil
}

// findOrCreateOAuthUser links the provider identity to an account by email.
// An existing password account with the same email is signed in as-is.
func (p *Provider) findOrCreateOAuthUser(ctx context.Context, providerName, email string) (*models.User, error) {
	var user models.User
	err := p.Store.SelectOne(ctx, store.TableUsers, store.Filter{"email": email}, &user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user = models.User{
		UserID:       "u" + utils.GenerateRandomString(10),
		Email:        email,
		AuthProvider: providerName,
		CreatedAt:    time.Now(),
	}
	if err := p.Store.Insert(ctx, store.TableUsers, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost a concurrent first-login race for this email; the row
			// exists now.
			if err := p.Store.SelectOne(ctx, store.TableUsers, store.Filter{"email": email}, &user); err == nil {
				return &user, nil
			}
		}
		return nil, err
	}
	return &user, nil
}

func oauthStateKey(state string) string { return "oauthstate:" + state }

// OAuthStartHandler handles GET /api/auth/oauth/:provider and redirects the
// browser to the provider's consent screen.
func (p *Provider) OAuthStartHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	providerName := ps.ByName("provider")

	state := utils.GenerateRandomString(24)
	authURL, err := p.SignInWithOAuth(providerName, state)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "unknown provider")
		return
	}

	if p.Cache == nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "OAuth sign-in is not available")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := p.Cache.Set(ctx, oauthStateKey(state), providerName, oauthStateTTL); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "OAuth sign-in is not available")
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallbackHandler handles GET /api/auth/callback?code&state. On
// success it redirects to the confirmed page with the session token in the
// fragment; failures redirect to the auth error page.
func (p *Provider) OAuthCallbackHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		p.redirectAuthError(w, r, "認証パラメータが不正です")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if p.Cache == nil {
		p.redirectAuthError(w, r, "ログイン処理中にエラーが発生しました")
		return
	}
	providerName, err := p.Cache.Get(ctx, oauthStateKey(state))
	if err != nil {
		p.redirectAuthError(w, r, "認証セッションが無効です。もう一度お試しください")
		return
	}
	// single use
	_ = p.Cache.Del(ctx, oauthStateKey(state))

	token, _, err := p.ExchangeCodeForSession(ctx, providerName, code)
	if err != nil {
		p.redirectAuthError(w, r, "ログインに失敗しました")
		return
	}

	http.Redirect(w, r, strings.TrimRight(p.Cfg.AppURL, "/")+"/auth/confirmed#token="+token, http.StatusFound)
}

func (p *Provider) redirectAuthError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/auth/error?message="+url.QueryEscape(message), http.StatusFound)
}
