package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nonact/config"
	"nonact/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeIdentityProvider serves just enough of the code flow to exercise the
// exchange path without the network.
func fakeIdentityProvider(t *testing.T, email string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-1","token_type":"bearer"}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"email":%q}`, email)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func withFakeProvider(t *testing.T, name string, srv *httptest.Server) {
	t.Helper()
	saved := oauthEndpoints[name]
	entry := saved
	entry.endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/token"}
	entry.userInfoURL = srv.URL + "/userinfo"
	oauthEndpoints[name] = entry
	t.Cleanup(func() { oauthEndpoints[name] = saved })
}

func oauthTestProvider(mem *store.Memory) *Provider {
	return &Provider{
		Store: mem,
		Cfg: &config.Config{
			JwtSecret: []byte("test-secret"),
			AppURL:    "http://localhost:8080",
			OAuth: map[string]config.OAuthCreds{
				"google": {ClientID: "cid", ClientSecret: "csec"},
			},
		},
	}
}

func TestExchangeCodeForSessionCreatesUser(t *testing.T) {
	srv := fakeIdentityProvider(t, "oauth@example.com")
	withFakeProvider(t, "google", srv)

	mem := store.NewMemory()
	p := oauthTestProvider(mem)

	token, user, err := p.ExchangeCodeForSession(context.Background(), "google", "code-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "oauth@example.com", user.Email)
	assert.Equal(t, "google", user.AuthProvider)
	assert.Empty(t, user.PasswordHash)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, mem.Count(store.TableUsers, store.Filter{"email": "oauth@example.com"}))
}

func TestExchangeCodeForSessionReusesAccount(t *testing.T) {
	srv := fakeIdentityProvider(t, "oauth@example.com")
	withFakeProvider(t, "google", srv)

	mem := store.NewMemory()
	p := oauthTestProvider(mem)

	_, first, err := p.ExchangeCodeForSession(context.Background(), "google", "code-1")
	require.NoError(t, err)
	_, second, err := p.ExchangeCodeForSession(context.Background(), "google", "code-2")
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, 1, mem.Count(store.TableUsers, store.Filter{}))
}

func TestExchangeCodeForSessionLinksPasswordAccount(t *testing.T) {
	srv := fakeIdentityProvider(t, "taro@example.com")
	withFakeProvider(t, "google", srv)

	mem := store.NewMemory()
	p := oauthTestProvider(mem)

	existing, err := p.SignUp(context.Background(), "taro@example.com", "password123")
	require.NoError(t, err)

	_, user, err := p.ExchangeCodeForSession(context.Background(), "google", "code-1")
	require.NoError(t, err)
	assert.Equal(t, existing.UserID, user.UserID)
	assert.Equal(t, 1, mem.Count(store.TableUsers, store.Filter{}))
}

func TestExchangeCodeForSessionNoEmail(t *testing.T) {
	srv := fakeIdentityProvider(t, "")
	withFakeProvider(t, "google", srv)

	mem := store.NewMemory()
	p := oauthTestProvider(mem)

	_, _, err := p.ExchangeCodeForSession(context.Background(), "google", "code-1")
	require.Error(t, err)
	assert.Equal(t, 0, mem.Count(store.TableUsers, store.Filter{}))
}

func TestSignInWithOAuthBuildsAuthURL(t *testing.T) {
	p := oauthTestProvider(store.NewMemory())

	authURL, err := p.SignInWithOAuth("google", "state-1")
	require.NoError(t, err)
	assert.True(t, strings.Contains(authURL, "state=state-1"))
	assert.True(t, strings.Contains(authURL, "client_id=cid"))
}

func TestSignInWithOAuthUnknownProvider(t *testing.T) {
	p := oauthTestProvider(store.NewMemory())

	_, err := p.SignInWithOAuth("myspace", "state-1")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	// known endpoint but no configured credentials
	_, err = p.SignInWithOAuth("twitter", "state-1")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestOAuthStartHandlerUnknownProvider(t *testing.T) {
	p := oauthTestProvider(store.NewMemory())

	r := httptest.NewRequest(http.MethodGet, "/api/auth/oauth/myspace", nil)
	w := httptest.NewRecorder()
	p.OAuthStartHandler(w, r, httprouter.Params{{Key: "provider", Value: "myspace"}})

	assert.Equal(t, http.StatusNotFound, w.Code)
}
